// Package webnn describes WebNN computational graphs as they are handed to a backend:
// an operand table, constant buffers, an ordered list of operations and the backend's
// context properties.
//
// The package only holds the description. Shape and data type inference lives in the
// validation package and lowering to CoreML in the coreml package.
package webnn

import (
	"cmp"
	"strings"

	"github.com/emirpasic/gods/v2/sets/treeset"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// DataType is the element type of an operand. Only the 8 WebNN kinds are valid, see
// AllDataTypes.
type DataType = dtypes.DType

// The WebNN operand data types.
const (
	Float32 = dtypes.Float32
	Float16 = dtypes.Float16
	Int32   = dtypes.Int32
	Uint32  = dtypes.Uint32
	Int64   = dtypes.Int64
	Uint64  = dtypes.Uint64
	Int8    = dtypes.Int8
	Uint8   = dtypes.Uint8
)

// webnnNames maps the data types to their WebNN (IDL) spelling.
var webnnNames = map[DataType]string{
	Float32: "float32",
	Float16: "float16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Int8:    "int8",
	Uint8:   "uint8",
}

// DataTypeName returns the WebNN name of the data type, e.g. "float32".
func DataTypeName(dt DataType) string {
	if name, ok := webnnNames[dt]; ok {
		return name
	}
	return "invalid(" + dt.String() + ")"
}

// ParseDataType parses a WebNN data type name, e.g. "float16".
func ParseDataType(name string) (DataType, error) {
	for dt, n := range webnnNames {
		if n == name {
			return dt, nil
		}
	}
	return dtypes.InvalidDType, errors.Errorf("unknown WebNN data type %q", name)
}

// ElementSize returns the size in bytes of one element of the data type.
func ElementSize(dt DataType) int {
	return dt.Size()
}

// SupportedDataTypes is an ordered set of data types. The zero value is an empty set.
type SupportedDataTypes struct {
	set *treeset.Set[DataType]
}

func compareDataTypes(a, b DataType) int {
	return cmp.Compare(int(a), int(b))
}

// NewSupportedDataTypes returns a set holding the given data types.
func NewSupportedDataTypes(types ...DataType) SupportedDataTypes {
	return SupportedDataTypes{set: treeset.NewWith[DataType](compareDataTypes, types...)}
}

// Has returns whether dt is in the set.
func (s SupportedDataTypes) Has(dt DataType) bool {
	if s.set == nil {
		return false
	}
	return s.set.Contains(dt)
}

// HasAll returns whether every one of types is in the set.
func (s SupportedDataTypes) HasAll(types ...DataType) bool {
	for _, dt := range types {
		if !s.Has(dt) {
			return false
		}
	}
	return true
}

// Len returns the number of data types in the set.
func (s SupportedDataTypes) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Size()
}

// Values returns the data types in the set in a stable order.
func (s SupportedDataTypes) Values() []DataType {
	if s.set == nil {
		return nil
	}
	return s.set.Values()
}

// Union returns a new set with the data types of both sets.
func (s SupportedDataTypes) Union(other SupportedDataTypes) SupportedDataTypes {
	return NewSupportedDataTypes(append(s.Values(), other.Values()...)...)
}

// Intersection returns a new set with the data types present in both sets.
func (s SupportedDataTypes) Intersection(other SupportedDataTypes) SupportedDataTypes {
	var common []DataType
	for _, dt := range s.Values() {
		if other.Has(dt) {
			common = append(common, dt)
		}
	}
	return NewSupportedDataTypes(common...)
}

// String implements fmt.Stringer, e.g. "[float16, float32]".
func (s SupportedDataTypes) String() string {
	names := make([]string, 0, s.Len())
	for _, dt := range s.Values() {
		names = append(names, DataTypeName(dt))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Commonly used sets.
var (
	AllDataTypes   = NewSupportedDataTypes(Float32, Float16, Int32, Uint32, Int64, Uint64, Int8, Uint8)
	FloatDataTypes = NewSupportedDataTypes(Float32, Float16)
	IntDataTypes   = NewSupportedDataTypes(Int32, Uint32, Int64, Uint64, Int8, Uint8)

	// FloatAndSignedIntDataTypes is used by operations defined for negative numbers, like abs or neg.
	FloatAndSignedIntDataTypes = NewSupportedDataTypes(Float32, Float16, Int32, Int64, Int8)
)

// IsFloat returns whether dt is one of the floating point WebNN types.
func IsFloat(dt DataType) bool {
	return FloatDataTypes.Has(dt)
}
