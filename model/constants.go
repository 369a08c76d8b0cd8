package model

import (
	"encoding/binary"

	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// createValue creates a MIL immediate value from Go data.
//
// Float16, int8 and uint8 tensors are stored as raw little-endian bytes; data for them
// may be given either as bytes or, for float16, as []float32 or []float16.Float16.
func createValue(dtype DType, shape []int64, data any) (*milspec.Value, error) {
	var tensorVal *milspec.TensorValue
	switch d := data.(type) {
	case []float32:
		if dtype == Float16 {
			tensorVal = bytesTensor(float16Bytes(d))
			break
		}
		tensorVal = &milspec.TensorValue{
			Value: &milspec.TensorValue_Floats{
				Floats: &milspec.TensorValue_RepeatedFloats{Values: d},
			},
		}
	case []float16.Float16:
		raw := make([]byte, 2*len(d))
		for i, v := range d {
			binary.LittleEndian.PutUint16(raw[2*i:], v.Bits())
		}
		tensorVal = bytesTensor(raw)
	case []int32:
		tensorVal = &milspec.TensorValue{
			Value: &milspec.TensorValue_Ints{
				Ints: &milspec.TensorValue_RepeatedInts{Values: d},
			},
		}
	case []int8:
		raw := make([]byte, len(d))
		for i, v := range d {
			raw[i] = byte(v)
		}
		tensorVal = bytesTensor(raw)
	case []byte:
		tensorVal = bytesTensor(d)
	case []bool:
		tensorVal = &milspec.TensorValue{
			Value: &milspec.TensorValue_Bools{
				Bools: &milspec.TensorValue_RepeatedBools{Values: d},
			},
		}
	case string:
		tensorVal = &milspec.TensorValue{
			Value: &milspec.TensorValue_Strings{
				Strings: &milspec.TensorValue_RepeatedStrings{Values: []string{d}},
			},
		}
	default:
		return nil, errors.Errorf("unsupported immediate data %T for %s", data, dtype)
	}

	return &milspec.Value{
		Type: tensorType(dtype, shape),
		Value: &milspec.Value_ImmediateValue_{
			ImmediateValue: &milspec.Value_ImmediateValue{
				Value: &milspec.Value_ImmediateValue_Tensor{Tensor: tensorVal},
			},
		},
	}, nil
}

func bytesTensor(raw []byte) *milspec.TensorValue {
	return &milspec.TensorValue{
		Value: &milspec.TensorValue_Bytes{
			Bytes: &milspec.TensorValue_RepeatedBytes{Values: raw},
		},
	}
}

func float16Bytes(values []float32) []byte {
	raw := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(raw[2*i:], float16.Fromfloat32(v).Bits())
	}
	return raw
}

// Const creates an immediate constant. It is not an operation: it is embedded in every
// operation that takes it as input.
func (b *Builder) Const(dtype DType, shape []int64, data any) *Value {
	val, err := createValue(dtype, shape, data)
	if err != nil {
		b.setErr(err)
	}
	return &Value{dtype: dtype, shape: shape, builder: b, isConst: true, constVal: val}
}

// ScalarConst creates a scalar immediate of dtype holding v, converted to the type.
func (b *Builder) ScalarConst(dtype DType, v float64) *Value {
	switch dtype {
	case Float32, Float16:
		return b.Const(dtype, nil, []float32{float32(v)})
	case Int32:
		return b.Const(dtype, nil, []int32{int32(v)})
	case Int8:
		return b.Const(dtype, nil, []int8{int8(v)})
	case UInt8:
		return b.Const(dtype, nil, []byte{byte(v)})
	case Bool:
		return b.Const(dtype, nil, []bool{v != 0})
	}
	b.setErr(errors.Errorf("unsupported scalar immediate type %s", dtype))
	return b.Const(Float32, nil, []float32{float32(v)})
}

// Int32Const creates a scalar int32 immediate.
func (b *Builder) Int32Const(v int32) *Value {
	return b.Const(Int32, nil, []int32{v})
}

// Int32sConst creates a 1-D int32 immediate, used for axes, shapes, strides, etc.
func (b *Builder) Int32sConst(values ...int32) *Value {
	if values == nil {
		values = []int32{}
	}
	return b.Const(Int32, []int64{int64(len(values))}, values)
}

// BoolConst creates a scalar boolean immediate.
func (b *Builder) BoolConst(v bool) *Value {
	return b.Const(Bool, nil, []bool{v})
}

// StringConst creates a scalar string immediate, used for modes such as pad_type.
func (b *Builder) StringConst(s string) *Value {
	return b.Const(String, nil, s)
}

// constOp emits a "const" operation producing a named value from val.
func (b *Builder) constOp(name string, dtype DType, shape []int64, val *milspec.Value) *Value {
	nameVal, _ := createValue(String, nil, name)
	op := &milspec.Operation{
		Type:    "const",
		Outputs: []*milspec.NamedValueType{namedValueType(name, dtype, shape)},
		Attributes: map[string]*milspec.Value{
			"name": nameVal,
			"val":  val,
		},
	}
	b.operations = append(b.operations, op)
	return b.register(&Value{name: name, dtype: dtype, shape: shape, builder: b})
}

// ConstOp emits a named constant whose data is embedded in the program.
func (b *Builder) ConstOp(name string, dtype DType, shape []int64, data any) *Value {
	val, err := createValue(dtype, shape, data)
	if err != nil {
		b.setErr(err)
	}
	return b.constOp(name, dtype, shape, val)
}

// BlobConst emits a named constant whose data is stored in a weights file. offset is the
// offset of the blob metadata record in fileName.
func (b *Builder) BlobConst(name string, dtype DType, shape []int64, fileName string, offset uint64) *Value {
	val := &milspec.Value{
		Type: tensorType(dtype, shape),
		Value: &milspec.Value_BlobFileValue_{
			BlobFileValue: &milspec.Value_BlobFileValue{FileName: fileName, Offset: offset},
		},
	}
	return b.constOp(name, dtype, shape, val)
}
