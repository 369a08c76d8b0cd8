package blob

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Writer accumulates blobs in memory and serializes them as a weights file.
//
// Usage:
//
//	w := blob.NewWriter()
//	offset, err := w.AddBlob(blob.DataTypeFloat32, weightData)
//	// Use offset in BlobFileValue.offset
//	...
//	err = w.WriteFile(path)
type Writer struct {
	offset  uint64 // Offset of the next metadata record
	entries []entry
}

type entry struct {
	metadataOffset uint64
	dataOffset     uint64
	dtype          DataType
	data           []byte
}

// NewWriter returns an empty writer. The first metadata record goes right after the header.
func NewWriter() *Writer {
	return &Writer{offset: Alignment}
}

// AddBlob appends a blob and returns the offset of its metadata record, the value stored
// in BlobFileValue.offset. The data is not copied and must not change until written.
func (w *Writer) AddBlob(dtype DataType, data []byte) (uint64, error) {
	if !dtype.Valid() {
		return 0, errors.Errorf("invalid blob data type %d", uint32(dtype))
	}
	metadataOffset := w.offset
	dataOffset := alignTo(metadataOffset+Alignment, Alignment)
	w.entries = append(w.entries, entry{
		metadataOffset: metadataOffset,
		dataOffset:     dataOffset,
		dtype:          dtype,
		data:           data,
	})
	w.offset = alignTo(dataOffset+uint64(len(data)), Alignment)
	return metadataOffset, nil
}

// Count returns the number of blobs added.
func (w *Writer) Count() int {
	return len(w.entries)
}

// Size returns the size in bytes of the serialized file.
func (w *Writer) Size() uint64 {
	if len(w.entries) == 0 {
		return Alignment
	}
	last := w.entries[len(w.entries)-1]
	return last.dataOffset + uint64(len(last.data))
}

// countingWriter tracks the number of bytes written, to pad to the next alignment.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (c *countingWriter) padTo(offset uint64) error {
	if gap := int64(offset) - c.n; gap > 0 {
		_, err := c.Write(make([]byte, gap))
		return err
	}
	return nil
}

// WriteTo writes the header, then the metadata record and data of every blob.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	header := StorageHeader{Count: uint32(len(w.entries)), Version: Version}
	if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
		return cw.n, errors.Wrap(err, "write header")
	}
	for _, e := range w.entries {
		if err := cw.padTo(e.metadataOffset); err != nil {
			return cw.n, errors.Wrap(err, "write padding")
		}
		metadata := Metadata{
			Sentinel:    MetadataSentinel,
			MilDType:    uint32(e.dtype),
			SizeInBytes: uint64(len(e.data)),
			Offset:      e.dataOffset,
		}
		if err := binary.Write(cw, binary.LittleEndian, &metadata); err != nil {
			return cw.n, errors.Wrapf(err, "write metadata at offset %d", e.metadataOffset)
		}
		if err := cw.padTo(e.dataOffset); err != nil {
			return cw.n, errors.Wrap(err, "write padding")
		}
		if _, err := cw.Write(e.data); err != nil {
			return cw.n, errors.Wrapf(err, "write data at offset %d", e.dataOffset)
		}
	}
	return cw.n, nil
}

// WriteFile creates (or truncates) the file at path and writes the blobs to it.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create blob file")
	}
	buffered := bufio.NewWriter(f)
	if _, err = w.WriteTo(buffered); err == nil {
		err = buffered.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "write blob file %s", path)
}
