package blob

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Entry is one blob read back from a weights file.
type Entry struct {
	// MetadataOffset is the offset the model uses to reference the blob.
	MetadataOffset uint64
	Metadata       Metadata
	Data           []byte
}

// DataType returns the tag of the blob.
func (e Entry) DataType() DataType { return DataType(e.Metadata.MilDType) }

// Read parses a weights file held in memory. The returned entries share data.
func Read(data []byte) ([]Entry, error) {
	var header StorageHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if header.Version != Version {
		return nil, errors.Errorf("unsupported blob storage version %d", header.Version)
	}

	entries := make([]Entry, 0, header.Count)
	offset := uint64(Alignment)
	for i := range header.Count {
		if offset+Alignment > uint64(len(data)) {
			return nil, errors.Errorf("blob #%d metadata at offset %d is past the end of the file (%d bytes)", i, offset, len(data))
		}
		var metadata Metadata
		if err := binary.Read(bytes.NewReader(data[offset:offset+Alignment]), binary.LittleEndian, &metadata); err != nil {
			return nil, errors.Wrapf(err, "read metadata at offset %d", offset)
		}
		if metadata.Sentinel != MetadataSentinel {
			return nil, errors.Errorf("invalid sentinel 0x%X in metadata at offset %d", metadata.Sentinel, offset)
		}
		end := metadata.Offset + metadata.SizeInBytes
		if metadata.Offset < offset+Alignment || end < metadata.Offset || end > uint64(len(data)) {
			return nil, errors.Errorf("blob #%d data [%d, %d) is out of the bounds of the file (%d bytes)",
				i, metadata.Offset, end, len(data))
		}
		entries = append(entries, Entry{
			MetadataOffset: offset,
			Metadata:       metadata,
			Data:           data[metadata.Offset:end],
		})
		offset = alignTo(end, Alignment)
	}
	return entries, nil
}

// ReadFile reads and parses the weights file at path.
func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read blob file")
	}
	return Read(data)
}
