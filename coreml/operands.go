package coreml

import (
	"strconv"
	"strings"

	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
)

// Prefixes of the MIL names. Every operand of the graph and every value created while
// lowering gets one, so names never collide.
const (
	inputPrefix    = "input_"
	outputPrefix   = "output_"
	varPrefix      = "var_"
	internalPrefix = "internal_"

	// placeholderName is the input added to graphs without inputs.
	placeholderName = "placeholder"
)

// sanitize removes the characters that are not valid in MIL identifiers, i.e. anything
// other than [A-Za-z0-9_@].
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '@':
			return r
		}
		return -1
	}, name)
}

func idString(id webnn.OperandID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// operandName returns the MIL name of an operand of the graph: inputs and outputs keep
// their sanitized names and are made unique by their id, the others use their id.
func operandName(id webnn.OperandID, operand webnn.Operand) string {
	switch operand.Kind {
	case webnn.KindInput:
		return inputPrefix + sanitize(operand.Name) + "_" + idString(id)
	case webnn.KindOutput:
		if operand.Name == "" {
			return outputPrefix + idString(id)
		}
		return outputPrefix + sanitize(operand.Name) + "_" + idString(id)
	}
	return varPrefix + idString(id)
}

// operandHandle addresses an operandInfo in an operandArena.
type operandHandle int

// operandInfo is what the lowering knows of a MIL value.
type operandInfo struct {
	// name is the MIL name, empty for immediates.
	name string
	// dims and dtype are the MIL shape and type.
	dims  []int64
	dtype model.DType
	// desc is the WebNN descriptor, only set for operands of the graph.
	desc  webnn.OperandDescriptor
	value *model.Value
}

// operandArena holds the values of the operands of the graph, addressed by their id, and
// numbers the synthetic values created by decompositions.
type operandArena struct {
	infos    []operandInfo
	handles  map[webnn.OperandID]operandHandle
	internal int
}

func newOperandArena() *operandArena {
	return &operandArena{handles: make(map[webnn.OperandID]operandHandle)}
}

func (a *operandArena) add(v *model.Value, desc webnn.OperandDescriptor) operandHandle {
	a.infos = append(a.infos, operandInfo{
		name:  v.Name(),
		dims:  v.Shape(),
		dtype: v.DType(),
		desc:  desc,
		value: v,
	})
	return operandHandle(len(a.infos) - 1)
}

// bind records v as the value of the graph operand id. A bound operand may be bound
// again: scalar inputs are redirected to their reshaped value.
func (a *operandArena) bind(id webnn.OperandID, v *model.Value, desc webnn.OperandDescriptor) {
	a.handles[id] = a.add(v, desc)
}

// lookup returns the info of the graph operand id, if it was bound.
func (a *operandArena) lookup(id webnn.OperandID) (*operandInfo, bool) {
	h, ok := a.handles[id]
	if !ok {
		return nil, false
	}
	return &a.infos[h], true
}

// internalName returns a fresh name for a synthetic value.
func (a *operandArena) internalName() string {
	name := internalPrefix + strconv.Itoa(a.internal)
	a.internal++
	return name
}
