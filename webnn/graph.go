package webnn

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
)

// GraphInfo is the complete description of a graph handed to a backend.
type GraphInfo struct {
	// Operands maps every operand id to its description.
	Operands map[OperandID]Operand

	// InputOperands and OutputOperands list the declared inputs and outputs, in order.
	InputOperands  []OperandID
	OutputOperands []OperandID

	// Operations in a valid topological order. Backends do not reorder them.
	Operations []Operation

	// ConstantData holds the dense little-endian buffer of every constant operand.
	ConstantData map[OperandID][]byte
}

// NewGraphInfo returns an empty graph.
func NewGraphInfo() *GraphInfo {
	return &GraphInfo{
		Operands:     make(map[OperandID]Operand),
		ConstantData: make(map[OperandID][]byte),
	}
}

// Operand returns the operand with the given id.
func (g *GraphInfo) Operand(id OperandID) (Operand, bool) {
	op, ok := g.Operands[id]
	return op, ok
}

// Descriptor returns the descriptor of the operand, or an error if there is no such operand.
func (g *GraphInfo) Descriptor(id OperandID) (OperandDescriptor, error) {
	op, ok := g.Operands[id]
	if !ok {
		return OperandDescriptor{}, errors.Errorf("operand %d does not exist", id)
	}
	return op.Descriptor, nil
}

// SortedOperandIDs returns the ids of all operands in increasing order.
func (g *GraphInfo) SortedOperandIDs() []OperandID {
	return slices.Sorted(maps.Keys(g.Operands))
}

// ConstantOperandIDs returns the ids of the constants in increasing order.
func (g *GraphInfo) ConstantOperandIDs() []OperandID {
	var ids []OperandID
	for _, id := range g.SortedOperandIDs() {
		if g.Operands[id].Kind == KindConstant {
			ids = append(ids, id)
		}
	}
	return ids
}

// GraphBuilder assembles a GraphInfo, allocating operand ids in increasing order. It is
// meant for tests and for tools that generate graphs programmatically.
type GraphBuilder struct {
	graph  *GraphInfo
	nextID OperandID
}

// NewGraphBuilder returns a builder of an empty graph. The first operand gets id 1.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{graph: NewGraphInfo(), nextID: 1}
}

func (b *GraphBuilder) add(kind OperandKind, name string, desc OperandDescriptor) OperandID {
	id := b.nextID
	b.nextID++
	b.graph.Operands[id] = Operand{Kind: kind, Descriptor: desc, Name: name}
	return id
}

// Input declares a named graph input.
func (b *GraphBuilder) Input(name string, desc OperandDescriptor) OperandID {
	id := b.add(KindInput, name, desc)
	b.graph.InputOperands = append(b.graph.InputOperands, id)
	return id
}

// Constant declares a constant operand owning data.
func (b *GraphBuilder) Constant(desc OperandDescriptor, data []byte) OperandID {
	id := b.add(KindConstant, "", desc)
	b.graph.ConstantData[id] = data
	return id
}

// Intermediate declares an operand that is produced and consumed inside the graph.
func (b *GraphBuilder) Intermediate(desc OperandDescriptor) OperandID {
	return b.add(KindIntermediate, "", desc)
}

// Output declares a named graph output. An empty name leaves the output unnamed.
func (b *GraphBuilder) Output(name string, desc OperandDescriptor) OperandID {
	id := b.add(KindOutput, name, desc)
	b.graph.OutputOperands = append(b.graph.OutputOperands, id)
	return id
}

// Add appends an operation. Operations must be added in topological order.
func (b *GraphBuilder) Add(op Operation) *GraphBuilder {
	b.graph.Operations = append(b.graph.Operations, op)
	return b
}

// Build returns the graph. The builder must not be used afterwards.
func (b *GraphBuilder) Build() *GraphInfo {
	return b.graph
}

// OptionalID returns a pointer to id, for optional operands of operations.
func OptionalID(id OperandID) *OperandID {
	return &id
}
