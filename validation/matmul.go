package validation

import (
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// ValidateMatmul validates matmul of a [..., M, K] and b [..., K, N]. The batch
// dimensions are broadcast bidirectionally.
func ValidateMatmul(props webnn.ContextProperties, a, b webnn.OperandDescriptor) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("matmul input", a.DataType(), props.DataTypeLimits.MatmulInput); err != nil {
		return
	}
	if err = checkSameDataType("b", a, b); err != nil {
		return
	}
	if a.Rank() < 2 || b.Rank() < 2 {
		err = errors.Errorf("matmul inputs must be at least 2-D, got shapes %v and %v", a.Shape(), b.Shape())
		return
	}
	aShape, bShape := a.Shape(), b.Shape()
	m, k := aShape[len(aShape)-2], aShape[len(aShape)-1]
	bk, n := bShape[len(bShape)-2], bShape[len(bShape)-1]
	if k != bk {
		err = errors.Errorf("matmul inner dimensions must match, got shapes %v and %v", aShape, bShape)
		return
	}
	batch, err := BroadcastShapes(aShape[:len(aShape)-2], bShape[:len(bShape)-2], true)
	if err != nil {
		err = errors.WithMessage(err, "matmul batch dimensions")
		return
	}
	return newDescriptor("matmul", a.DataType(), append(batch, m, n))
}

// ValidateGemm validates gemm of 2-D a and b, optionally transposed. c must be
// broadcastable to the [M, N] result.
func ValidateGemm(props webnn.ContextProperties, a, b webnn.OperandDescriptor, c *webnn.OperandDescriptor,
	attrs webnn.GemmAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("gemm input", a.DataType(), props.DataTypeLimits.GemmInput); err != nil {
		return
	}
	if err = checkSameDataType("b", a, b); err != nil {
		return
	}
	if err = checkRank("gemm a", a, 2); err != nil {
		return
	}
	if err = checkRank("gemm b", b, 2); err != nil {
		return
	}
	m, k := a.Shape()[0], a.Shape()[1]
	if attrs.ATranspose {
		m, k = k, m
	}
	bk, n := b.Shape()[0], b.Shape()[1]
	if attrs.BTranspose {
		bk, n = n, bk
	}
	if k != bk {
		err = errors.Errorf("gemm inner dimensions must match, got %d and %d", k, bk)
		return
	}
	if c != nil {
		if err = checkSameDataType("c", a, *c); err != nil {
			return
		}
		if c.Rank() > 2 {
			err = errors.Errorf("gemm c must be at most 2-D, got shape %v", c.Shape())
			return
		}
		if _, err = BroadcastShapes(c.Shape(), []uint32{m, n}, false); err != nil {
			err = errors.WithMessage(err, "gemm c")
			return
		}
	}
	return newDescriptor("gemm", a.DataType(), []uint32{m, n})
}
