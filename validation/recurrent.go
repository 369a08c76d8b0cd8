package validation

import (
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

const (
	gruGates  = 3
	lstmGates = 4

	gruActivations  = 2
	lstmActivations = 3
)

// RecurrentDescriptors are the optional operands of gru, gruCell, lstm and lstmCell.
type RecurrentDescriptors struct {
	Bias               *webnn.OperandDescriptor
	RecurrentBias      *webnn.OperandDescriptor
	Peephole           *webnn.OperandDescriptor
	InitialHiddenState *webnn.OperandDescriptor
	InitialCellState   *webnn.OperandDescriptor
}

// recurrentParameter is an operand whose shape derives from the attributes.
type recurrentParameter struct {
	name  string
	desc  *webnn.OperandDescriptor
	shape []uint32
}

// recurrentNetwork holds what gru and lstm share.
type recurrentNetwork struct {
	op          string
	steps       uint32
	hiddenSize  uint32
	directions  uint32
	gates       uint32
	activations int
}

// validate checks the operands of a network and returns the hidden state shape
// [directions, batch, hiddenSize].
func (r recurrentNetwork) validate(supported webnn.SupportedDataTypes, input, weight, recurrentWeight webnn.OperandDescriptor,
	optional RecurrentDescriptors, activations []webnn.RecurrentActivation) ([]uint32, error) {
	if err := checkDataType(r.op+" input", input.DataType(), supported); err != nil {
		return nil, err
	}
	if err := checkRank(r.op+" input", input, 3); err != nil {
		return nil, err
	}
	if r.steps == 0 || r.hiddenSize == 0 {
		return nil, errors.Errorf("%s steps (%d) and hidden size (%d) must be greater than 0", r.op, r.steps, r.hiddenSize)
	}
	if input.Shape()[0] != r.steps {
		return nil, errors.Errorf("%s input dimension 0 (%d) must be equal to steps (%d)", r.op, input.Shape()[0], r.steps)
	}
	if len(activations) != r.activations {
		return nil, errors.Errorf("%s requires %d activations, got %d", r.op, r.activations, len(activations))
	}
	gateSize, ok := checkedMul(r.gates, r.hiddenSize)
	if !ok {
		return nil, errors.Errorf("%s hidden size %d is too large", r.op, r.hiddenSize)
	}
	batch, inputSize := input.Shape()[1], input.Shape()[2]

	params := []recurrentParameter{
		{"weight", &weight, []uint32{r.directions, gateSize, inputSize}},
		{"recurrentWeight", &recurrentWeight, []uint32{r.directions, gateSize, r.hiddenSize}},
		{"bias", optional.Bias, []uint32{r.directions, gateSize}},
		{"recurrentBias", optional.RecurrentBias, []uint32{r.directions, gateSize}},
		{"initialHiddenState", optional.InitialHiddenState, []uint32{r.directions, batch, r.hiddenSize}},
	}
	if r.gates == lstmGates {
		peepholeSize, _ := checkedMul(3, r.hiddenSize)
		params = append(params,
			recurrentParameter{"peepholeWeight", optional.Peephole, []uint32{r.directions, peepholeSize}},
			recurrentParameter{"initialCellState", optional.InitialCellState, []uint32{r.directions, batch, r.hiddenSize}})
	}
	for _, param := range params {
		if err := checkOptionalParameter(r.op+" "+param.name, input, param.desc, param.shape...); err != nil {
			return nil, err
		}
	}
	return []uint32{r.directions, batch, r.hiddenSize}, nil
}

// ValidateGru validates gru and returns its outputs: the last hidden state
// [directions, batch, hiddenSize] and, if returnSequence, the hidden states of every step
// [steps, directions, batch, hiddenSize].
func ValidateGru(props webnn.ContextProperties, input, weight, recurrentWeight webnn.OperandDescriptor,
	optional RecurrentDescriptors, op *webnn.Gru) (outputs []webnn.OperandDescriptor, err error) {
	r := recurrentNetwork{op: "gru", steps: op.Steps, hiddenSize: op.HiddenSize, directions: op.Direction.NumDirections(),
		gates: gruGates, activations: gruActivations}
	hidden, err := r.validate(props.DataTypeLimits.GruInput, input, weight, recurrentWeight, optional, op.Activations)
	if err != nil {
		return nil, err
	}
	return recurrentOutputs(r.op, input.DataType(), hidden, op.Steps, op.ReturnSequence, 1)
}

// ValidateLstm validates lstm and returns its outputs: the last hidden and cell states
// [directions, batch, hiddenSize] and, if returnSequence, the hidden states of every step.
func ValidateLstm(props webnn.ContextProperties, input, weight, recurrentWeight webnn.OperandDescriptor,
	optional RecurrentDescriptors, op *webnn.Lstm) (outputs []webnn.OperandDescriptor, err error) {
	r := recurrentNetwork{op: "lstm", steps: op.Steps, hiddenSize: op.HiddenSize, directions: op.Direction.NumDirections(),
		gates: lstmGates, activations: lstmActivations}
	hidden, err := r.validate(props.DataTypeLimits.LstmInput, input, weight, recurrentWeight, optional, op.Activations)
	if err != nil {
		return nil, err
	}
	return recurrentOutputs(r.op, input.DataType(), hidden, op.Steps, op.ReturnSequence, 2)
}

func recurrentOutputs(op string, dt webnn.DataType, hidden []uint32, steps uint32, returnSequence bool, states int) ([]webnn.OperandDescriptor, error) {
	state, err := newDescriptor(op, dt, hidden)
	if err != nil {
		return nil, err
	}
	var outputs []webnn.OperandDescriptor
	for range states {
		outputs = append(outputs, state)
	}
	if returnSequence {
		sequence, err := newDescriptor(op, dt, append([]uint32{steps}, hidden...))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, sequence)
	}
	return outputs, nil
}

// recurrentCell holds what gruCell and lstmCell share.
type recurrentCell struct {
	op          string
	hiddenSize  uint32
	gates       uint32
	activations int
}

// validate checks the operands of a cell and returns the hidden state shape [batch, hiddenSize].
func (r recurrentCell) validate(supported webnn.SupportedDataTypes, input, weight, recurrentWeight, hiddenState webnn.OperandDescriptor,
	cellState *webnn.OperandDescriptor, optional RecurrentDescriptors, activations []webnn.RecurrentActivation) ([]uint32, error) {
	if err := checkDataType(r.op+" input", input.DataType(), supported); err != nil {
		return nil, err
	}
	if err := checkRank(r.op+" input", input, 2); err != nil {
		return nil, err
	}
	if r.hiddenSize == 0 {
		return nil, errors.Errorf("%s hidden size must be greater than 0", r.op)
	}
	if len(activations) != r.activations {
		return nil, errors.Errorf("%s requires %d activations, got %d", r.op, r.activations, len(activations))
	}
	gateSize, ok := checkedMul(r.gates, r.hiddenSize)
	if !ok {
		return nil, errors.Errorf("%s hidden size %d is too large", r.op, r.hiddenSize)
	}
	batch, inputSize := input.Shape()[0], input.Shape()[1]
	peepholeSize, _ := checkedMul(3, r.hiddenSize)
	for _, param := range []recurrentParameter{
		{"weight", &weight, []uint32{gateSize, inputSize}},
		{"recurrentWeight", &recurrentWeight, []uint32{gateSize, r.hiddenSize}},
		{"hiddenState", &hiddenState, []uint32{batch, r.hiddenSize}},
		{"cellState", cellState, []uint32{batch, r.hiddenSize}},
		{"bias", optional.Bias, []uint32{gateSize}},
		{"recurrentBias", optional.RecurrentBias, []uint32{gateSize}},
		{"peepholeWeight", optional.Peephole, []uint32{peepholeSize}},
	} {
		if err := checkOptionalParameter(r.op+" "+param.name, input, param.desc, param.shape...); err != nil {
			return nil, err
		}
	}
	return []uint32{batch, r.hiddenSize}, nil
}

// ValidateGruCell validates gruCell and returns the new hidden state [batch, hiddenSize].
func ValidateGruCell(props webnn.ContextProperties, input, weight, recurrentWeight, hiddenState webnn.OperandDescriptor,
	optional RecurrentDescriptors, attrs webnn.GruAttributes) (output webnn.OperandDescriptor, err error) {
	r := recurrentCell{op: "gruCell", hiddenSize: attrs.HiddenSize, gates: gruGates, activations: gruActivations}
	hidden, err := r.validate(props.DataTypeLimits.GruInput, input, weight, recurrentWeight, hiddenState, nil, optional, attrs.Activations)
	if err != nil {
		return
	}
	return newDescriptor(r.op, input.DataType(), hidden)
}

// ValidateLstmCell validates lstmCell and returns the new hidden and cell states
// [batch, hiddenSize].
func ValidateLstmCell(props webnn.ContextProperties, input, weight, recurrentWeight, hiddenState, cellState webnn.OperandDescriptor,
	optional RecurrentDescriptors, attrs webnn.LstmAttributes) (outputs []webnn.OperandDescriptor, err error) {
	r := recurrentCell{op: "lstmCell", hiddenSize: attrs.HiddenSize, gates: lstmGates, activations: lstmActivations}
	hidden, err := r.validate(props.DataTypeLimits.LstmInput, input, weight, recurrentWeight, hiddenState, &cellState, optional, attrs.Activations)
	if err != nil {
		return nil, err
	}
	state, err := newDescriptor(r.op, input.DataType(), hidden)
	if err != nil {
		return nil, err
	}
	return []webnn.OperandDescriptor{state, state}, nil
}
