package webnn

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// OperandID identifies an operand within a graph.
type OperandID uint64

// OperandKind tells where an operand comes from.
type OperandKind int

const (
	// KindIntermediate operands are produced and consumed by operations of the graph.
	KindIntermediate OperandKind = iota
	// KindInput operands are fed by the caller at compute time.
	KindInput
	// KindConstant operands own a byte buffer in GraphInfo.ConstantData.
	KindConstant
	// KindOutput operands are produced by an operation and returned to the caller.
	KindOutput
)

var operandKindNames = []string{"intermediate", "input", "constant", "output"}

func (k OperandKind) String() string { return enumString(operandKindNames, k) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OperandKind) UnmarshalText(text []byte) error {
	return parseEnum(operandKindNames, text, k)
}

// OperandDescriptor holds the data type and the shape of an operand.
// Use NewOperandDescriptor to build valid descriptors.
type OperandDescriptor struct {
	dataType DataType
	shape    []uint32
}

// NewOperandDescriptor returns a descriptor if every dimension is positive and the
// number of elements and bytes fit in the platform's size type.
func NewOperandDescriptor(dataType DataType, shape ...uint32) (OperandDescriptor, error) {
	if !AllDataTypes.Has(dataType) {
		return OperandDescriptor{}, errors.Errorf("invalid operand data type %s", dataType)
	}
	elements := uint64(1)
	for i, dim := range shape {
		if dim == 0 {
			return OperandDescriptor{}, errors.Errorf("dimension %d of shape %v must be greater than 0", i, shape)
		}
		hi, lo := bits.Mul64(elements, uint64(dim))
		if hi != 0 {
			return OperandDescriptor{}, errors.Errorf("number of elements of shape %v is too large", shape)
		}
		elements = lo
	}
	hi, byteLength := bits.Mul64(elements, uint64(ElementSize(dataType)))
	if hi != 0 || byteLength > math.MaxInt {
		return OperandDescriptor{}, errors.Errorf("byte length of %s tensor of shape %v is too large", DataTypeName(dataType), shape)
	}
	return OperandDescriptor{dataType: dataType, shape: slices.Clone(shape)}, nil
}

// MustNewOperandDescriptor is like NewOperandDescriptor but panics on error. Meant for
// tests and static tables.
func MustNewOperandDescriptor(dataType DataType, shape ...uint32) OperandDescriptor {
	d, err := NewOperandDescriptor(dataType, shape...)
	if err != nil {
		panic(err)
	}
	return d
}

// DataType returns the element type.
func (d OperandDescriptor) DataType() DataType { return d.dataType }

// Shape returns the dimensions. The returned slice must not be modified.
func (d OperandDescriptor) Shape() []uint32 { return d.shape }

// Rank returns the number of dimensions. 0 means a scalar.
func (d OperandDescriptor) Rank() int { return len(d.shape) }

// IsScalar returns whether the operand has rank 0.
func (d OperandDescriptor) IsScalar() bool { return len(d.shape) == 0 }

// NumberOfElements returns the product of the dimensions (1 for scalars).
func (d OperandDescriptor) NumberOfElements() uint64 {
	n := uint64(1)
	for _, dim := range d.shape {
		n *= uint64(dim)
	}
	return n
}

// PackedByteLength returns the number of bytes of a dense buffer holding the operand.
func (d OperandDescriptor) PackedByteLength() uint64 {
	return d.NumberOfElements() * uint64(ElementSize(d.dataType))
}

// WithDataType returns a copy of the descriptor with another data type.
func (d OperandDescriptor) WithDataType(dt DataType) OperandDescriptor {
	return OperandDescriptor{dataType: dt, shape: d.shape}
}

// Equal returns whether both descriptors have the same data type and shape.
func (d OperandDescriptor) Equal(other OperandDescriptor) bool {
	return d.dataType == other.dataType && slices.Equal(d.shape, other.shape)
}

// String implements fmt.Stringer, e.g. "float32[1,3,8,8]".
func (d OperandDescriptor) String() string {
	parts := make([]string, len(d.shape))
	for i, dim := range d.shape {
		parts[i] = fmt.Sprint(dim)
	}
	return DataTypeName(d.dataType) + "[" + strings.Join(parts, ",") + "]"
}

// Operand is an entry of the graph's operand table.
type Operand struct {
	Kind       OperandKind
	Descriptor OperandDescriptor
	// Name is required for inputs and outputs and optional otherwise.
	Name string
}
