package coreml

import (
	"encoding/binary"

	"github.com/gomlx/webnn-coreml/blob"
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// milDataType returns the MIL type of a WebNN data type. 64-bit and unsigned 32-bit
// integers have no MIL equivalent.
func milDataType(dt webnn.DataType) (model.DType, bool) {
	switch dt {
	case webnn.Float32:
		return model.Float32, true
	case webnn.Float16:
		return model.Float16, true
	case webnn.Int32:
		return model.Int32, true
	case webnn.Int8:
		return model.Int8, true
	case webnn.Uint8:
		return model.UInt8, true
	}
	return 0, false
}

// mustMILDataType is milDataType for data types already accepted by the validation.
func mustMILDataType(dt webnn.DataType) model.DType {
	milType, ok := milDataType(dt)
	if !ok {
		panic(errors.Errorf("data type %s has no MIL equivalent", webnn.DataTypeName(dt)))
	}
	return milType
}

// dims converts WebNN dimensions to MIL ones.
func dims(desc webnn.OperandDescriptor) []int64 {
	shape := make([]int64, desc.Rank())
	for i, dim := range desc.Shape() {
		shape[i] = int64(dim)
	}
	return shape
}

func decodeInt32s(data []byte) []int32 {
	values := make([]int32, len(data)/4)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values
}

func decodeInt8s(data []byte) []int8 {
	values := make([]int8, len(data))
	for i, b := range data {
		values[i] = int8(b)
	}
	return values
}

// immediateData returns the Go representation of a constant buffer accepted by
// model.Builder.Const.
func immediateData(dt webnn.DataType, data []byte) (any, error) {
	switch dt {
	case webnn.Float32:
		values, err := webnn.DecodeValues(dt, data)
		if err != nil {
			return nil, err
		}
		floats := make([]float32, len(values))
		for i, v := range values {
			floats[i] = float32(v)
		}
		return floats, nil
	case webnn.Float16, webnn.Uint8:
		return data, nil
	case webnn.Int32:
		return decodeInt32s(data), nil
	case webnn.Int8:
		return decodeInt8s(data), nil
	}
	return nil, errors.Errorf("constants of type %s cannot be immediates", webnn.DataTypeName(dt))
}

// materialize makes the constant operand id available to the operations:
//
//   - scalars become immediates, embedded in each operation that reads them;
//   - other int32 constants become const operations holding the values;
//   - the other constants are appended to the weights file and become const operations
//     referencing their blob.
func materialize(e *emitter, id webnn.OperandID) error {
	operand := e.graph.Operands[id]
	desc := operand.Descriptor
	dt := desc.DataType()
	milType, ok := milDataType(dt)
	if !ok {
		return notSupported("constant %d has unsupported data type %s", id, webnn.DataTypeName(dt))
	}
	data := e.graph.ConstantData[id]
	shape := dims(desc)

	if desc.IsScalar() || dt == webnn.Int32 {
		values, err := immediateData(dt, data)
		if err != nil {
			return notSupported("constant %d: %v", id, err)
		}
		var v *model.Value
		if desc.IsScalar() {
			v = e.mil.Const(milType, shape, values)
		} else {
			v = e.mil.ConstOp(operandName(id, operand), milType, shape, values)
		}
		e.operands.bind(id, v, desc)
		return nil
	}

	tag, err := blob.DataTypeOf(dt)
	if err != nil {
		return notSupported("constant %d cannot be stored in the weights file: %v", id, err)
	}
	offset, err := e.weights.AddBlob(tag, data)
	if err != nil {
		return wrapError(CodeUnknown, err, "constant %d", id)
	}
	klog.V(2).Infof("constant %d: %s, %d bytes at weights offset %d", id, desc, len(data), offset)
	v := e.mil.BlobConst(operandName(id, operand), milType, shape, blob.ModelPath, offset)
	e.operands.bind(id, v, desc)
	return nil
}
