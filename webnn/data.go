package webnn

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// EncodeValues converts values to the dense little-endian buffer of a dt tensor.
// Values are truncated towards zero for integer types, and rejected if they fall outside
// the range of dt.
func EncodeValues(dt DataType, values []float64) ([]byte, error) {
	size := ElementSize(dt)
	data := make([]byte, len(values)*size)
	for i, v := range values {
		chunk := data[i*size : (i+1)*size]
		switch dt {
		case Float32:
			binary.LittleEndian.PutUint32(chunk, math.Float32bits(float32(v)))
		case Float16:
			binary.LittleEndian.PutUint16(chunk, float16.Fromfloat32(float32(v)).Bits())
		case Int32:
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, errors.Errorf("value %g at position %d overflows int32", v, i)
			}
			binary.LittleEndian.PutUint32(chunk, uint32(int32(v)))
		case Uint32:
			if v < 0 || v > math.MaxUint32 {
				return nil, errors.Errorf("value %g at position %d overflows uint32", v, i)
			}
			binary.LittleEndian.PutUint32(chunk, uint32(v))
		case Int64:
			if v < math.MinInt64 || v >= math.MaxInt64 {
				return nil, errors.Errorf("value %g at position %d overflows int64", v, i)
			}
			binary.LittleEndian.PutUint64(chunk, uint64(int64(v)))
		case Uint64:
			if v < 0 || v >= math.MaxUint64 {
				return nil, errors.Errorf("value %g at position %d overflows uint64", v, i)
			}
			binary.LittleEndian.PutUint64(chunk, uint64(v))
		case Int8:
			if v < math.MinInt8 || v > math.MaxInt8 {
				return nil, errors.Errorf("value %g at position %d overflows int8", v, i)
			}
			chunk[0] = byte(int8(v))
		case Uint8:
			if v < 0 || v > math.MaxUint8 {
				return nil, errors.Errorf("value %g at position %d overflows uint8", v, i)
			}
			chunk[0] = byte(v)
		default:
			return nil, errors.Errorf("cannot encode values of data type %s", dt)
		}
	}
	return data, nil
}

// DecodeValues is the inverse of EncodeValues. It returns an error if the buffer length
// is not a multiple of the element size.
func DecodeValues(dt DataType, data []byte) ([]float64, error) {
	size := ElementSize(dt)
	if size == 0 || len(data)%size != 0 {
		return nil, errors.Errorf("buffer of %d bytes does not hold %s values", len(data), DataTypeName(dt))
	}
	values := make([]float64, len(data)/size)
	for i := range values {
		chunk := data[i*size : (i+1)*size]
		switch dt {
		case Float32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case Float16:
			values[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(chunk)).Float32())
		case Int32:
			values[i] = float64(int32(binary.LittleEndian.Uint32(chunk)))
		case Uint32:
			values[i] = float64(binary.LittleEndian.Uint32(chunk))
		case Int64:
			values[i] = float64(int64(binary.LittleEndian.Uint64(chunk)))
		case Uint64:
			values[i] = float64(binary.LittleEndian.Uint64(chunk))
		case Int8:
			values[i] = float64(int8(chunk[0]))
		case Uint8:
			values[i] = float64(chunk[0])
		}
	}
	return values, nil
}

// Float32Bytes returns the buffer of a float32 tensor.
func Float32Bytes(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return data
}

// Float16Bytes returns the buffer of a float16 tensor holding values rounded to float16.
func Float16Bytes(values ...float32) []byte {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[2*i:], float16.Fromfloat32(v).Bits())
	}
	return data
}

// Int32Bytes returns the buffer of an int32 tensor.
func Int32Bytes(values ...int32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], uint32(v))
	}
	return data
}
