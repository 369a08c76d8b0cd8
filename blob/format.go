// Package blob implements CoreML's weight blob file format, used to store the constant
// tensors of a model outside of the model protobuf.
//
// File format:
//
//	[storage_header (64B)]
//	[blob_metadata_0 (64B)] [data_0 (64B aligned)]
//	[blob_metadata_1 (64B)] [data_1 (64B aligned)]
//	...
//
// The model references a blob by the offset of its metadata record.
//
// Reference: https://github.com/apple/coremltools/blob/main/mlmodel/src/MILBlob/Blob/StorageFormat.hpp
package blob

import (
	"unsafe"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/pkg/errors"
)

const (
	// Alignment is the byte alignment of the header, of every metadata record and of
	// every blob.
	Alignment = 64

	// MetadataSentinel marks the beginning of every metadata record.
	MetadataSentinel uint32 = 0xDEADBEEF

	// Version is the storage format version written in the header.
	Version uint32 = 2

	// FileName is the name of the weights file inside the package Data/weights directory.
	FileName = "weights.bin"

	// ModelPath is how the model refers to the weights file.
	ModelPath = "@model_path/weights/" + FileName
)

// DataType is the element type tag of a blob. Only the tags below are written.
type DataType uint32

const (
	DataTypeFloat16 DataType = 1
	DataTypeFloat32 DataType = 2
	DataTypeUInt8   DataType = 3
	DataTypeInt8    DataType = 4
)

func (t DataType) String() string {
	switch t {
	case DataTypeFloat16:
		return "float16"
	case DataTypeFloat32:
		return "float32"
	case DataTypeUInt8:
		return "uint8"
	case DataTypeInt8:
		return "int8"
	}
	return "invalid"
}

// Valid returns whether t is one of the supported tags.
func (t DataType) Valid() bool {
	return t >= DataTypeFloat16 && t <= DataTypeInt8
}

// DataTypeOf returns the blob tag of dt, or an error if dt can not be stored in a blob.
func DataTypeOf(dt dtypes.DType) (DataType, error) {
	switch dt {
	case dtypes.Float16:
		return DataTypeFloat16, nil
	case dtypes.Float32:
		return DataTypeFloat32, nil
	case dtypes.Uint8:
		return DataTypeUInt8, nil
	case dtypes.Int8:
		return DataTypeInt8, nil
	}
	return 0, errors.Errorf("data type %s can not be stored in a weights blob", dt)
}

// StorageHeader is the 64 bytes header at the start of the file.
type StorageHeader struct {
	Count    uint32   // Number of blobs in the file
	Version  uint32   // Always Version
	Reserved [56]byte // Must be zero
}

// Metadata is the 64 bytes record preceding each blob.
type Metadata struct {
	Sentinel          uint32   // MetadataSentinel
	MilDType          uint32   // DataType tag
	SizeInBytes       uint64   // Size of the blob
	Offset            uint64   // Absolute file offset of the blob
	PaddingSizeInBits uint64   // Unused bits for sub-byte types, always 0 here
	Reserved          [32]byte // Must be zero
}

// Both records must be exactly one alignment unit.
var (
	_ [Alignment]byte = [unsafe.Sizeof(StorageHeader{})]byte{}
	_ [Alignment]byte = [unsafe.Sizeof(Metadata{})]byte{}
)

// alignTo returns the smallest multiple of alignment >= offset.
func alignTo(offset uint64, alignment uint64) uint64 {
	if alignment == 0 {
		return offset
	}
	remainder := offset % alignment
	if remainder == 0 {
		return offset
	}
	return offset + (alignment - remainder)
}
