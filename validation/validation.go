// Package validation checks WebNN operations against a backend's context properties and
// infers the descriptors of their outputs.
//
// Every function is pure: it takes the descriptors of the inputs and the attributes of
// the operation, and either returns the inferred output descriptors or a descriptive
// error. ValidateGraph runs them over a whole graph.
package validation

import (
	"math"
	"slices"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// checkedAdd returns the sum of values, and false if it overflows uint32.
func checkedAdd(values ...uint32) (uint32, bool) {
	var sum uint64
	for _, v := range values {
		sum += uint64(v)
		if sum > math.MaxUint32 {
			return 0, false
		}
	}
	return uint32(sum), true
}

// checkedMul returns a*b, and false if it overflows uint32.
func checkedMul(a, b uint32) (uint32, bool) {
	product := uint64(a) * uint64(b)
	if product > math.MaxUint32 {
		return 0, false
	}
	return uint32(product), true
}

// checkDataType returns an error if dt is not in supported.
func checkDataType(what string, dt webnn.DataType, supported webnn.SupportedDataTypes) error {
	if !supported.Has(dt) {
		return errors.Errorf("unsupported data type %s for %s, must be one of %s",
			webnn.DataTypeName(dt), what, supported)
	}
	return nil
}

// checkSameDataType returns an error if other's data type differs from input's.
func checkSameDataType(what string, input, other webnn.OperandDescriptor) error {
	if input.DataType() != other.DataType() {
		return errors.Errorf("data type of %s (%s) must match the input data type (%s)",
			what, webnn.DataTypeName(other.DataType()), webnn.DataTypeName(input.DataType()))
	}
	return nil
}

// checkShape returns an error if desc's shape is not expected.
func checkShape(what string, desc webnn.OperandDescriptor, expected ...uint32) error {
	if !slices.Equal(desc.Shape(), expected) {
		return errors.Errorf("shape of %s must be %v, got %v", what, expected, desc.Shape())
	}
	return nil
}

// checkRank returns an error if desc's rank is not rank.
func checkRank(what string, desc webnn.OperandDescriptor, rank int) error {
	if desc.Rank() != rank {
		return errors.Errorf("%s must be a %d-D tensor, got shape %v", what, rank, desc.Shape())
	}
	return nil
}

// checkAxes returns an error if any axis is out of range or repeated.
func checkAxes(axes []uint32, rank int) error {
	seen := make([]bool, rank)
	for _, axis := range axes {
		if int(axis) >= rank {
			return errors.Errorf("axis %d must be in the range [0, %d)", axis, rank)
		}
		if seen[axis] {
			return errors.Errorf("axis %d is duplicated in %v", axis, axes)
		}
		seen[axis] = true
	}
	return nil
}

// newDescriptor wraps webnn.NewOperandDescriptor with context about the operation.
func newDescriptor(op string, dt webnn.DataType, shape []uint32) (webnn.OperandDescriptor, error) {
	desc, err := webnn.NewOperandDescriptor(dt, shape...)
	if err != nil {
		return webnn.OperandDescriptor{}, errors.WithMessagef(err, "invalid output of %s", op)
	}
	return desc, nil
}

// BroadcastShapes returns the shape resulting of broadcasting a and b, aligned on their
// trailing dimensions.
//
// When bidirectional, each pair of dimensions must be equal or one of them must be 1,
// and the output takes the largest. Otherwise a is broadcast to b: each dimension of a
// must be equal to b's or 1, a's rank must not exceed b's, and the output is b.
func BroadcastShapes(a, b []uint32, bidirectional bool) (output []uint32, err error) {
	rankA, rankB := len(a), len(b)
	if !bidirectional && rankA > rankB {
		err = errors.Errorf("shape %v is not broadcastable to shape %v", a, b)
		return
	}
	rank := max(rankA, rankB)
	output = make([]uint32, rank)
	for i := 1; i <= rank; i++ {
		dimA, dimB := uint32(1), uint32(1)
		if i <= rankA {
			dimA = a[rankA-i]
		}
		if i <= rankB {
			dimB = b[rankB-i]
		}
		switch {
		case dimA == dimB:
			output[rank-i] = dimA
		case dimA == 1:
			output[rank-i] = dimB
		case dimB == 1 && bidirectional:
			output[rank-i] = dimA
		default:
			if bidirectional {
				err = errors.Errorf("shapes %v and %v are not broadcastable", a, b)
			} else {
				err = errors.Errorf("shape %v is not broadcastable to shape %v", a, b)
			}
			return nil, err
		}
	}
	return output, nil
}
