package coreml

import (
	"github.com/gomlx/webnn-coreml/blob"
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// emitter is the state of the lowering of one graph. It is passed explicitly to the
// emit functions, one per WebNN operation, which append MIL operations in graph order.
type emitter struct {
	graph    *webnn.GraphInfo
	mil      *model.Builder
	weights  *blob.Writer
	operands *operandArena

	inputs []InputInfo
	// outputs holds, per graph output, the value declared as a model output.
	outputs map[webnn.OperandID]*model.Value
}

func newEmitter(graph *webnn.GraphInfo, cfg *config) *emitter {
	return &emitter{
		graph:    graph,
		mil:      model.NewBuilder(cfg.functionName).SetOpset(cfg.opset),
		weights:  blob.NewWriter(),
		operands: newOperandArena(),
		outputs:  make(map[webnn.OperandID]*model.Value),
	}
}

// desc returns the descriptor of a graph operand.
func (e *emitter) desc(id webnn.OperandID) webnn.OperandDescriptor {
	return e.graph.Operands[id].Descriptor
}

// value returns the MIL value of a graph operand. Inputs of an operation are bound
// before it is emitted, an unbound operand is a bug.
func (e *emitter) value(id webnn.OperandID) *model.Value {
	info, ok := e.operands.lookup(id)
	if !ok {
		panic(errors.Errorf("operand %d is used before it is defined", id))
	}
	return info.value
}

// isConstant returns whether the graph operand id is a constant.
func (e *emitter) isConstant(id webnn.OperandID) bool {
	return e.graph.Operands[id].Kind == webnn.KindConstant
}

// tmp returns a fresh name for an intermediate value of a decomposition.
func (e *emitter) tmp() string {
	return e.operands.internalName()
}

// target returns the name the last MIL operation of the lowering of an operation gives
// to the output id. Scalar graph outputs are produced under an internal name and
// reshaped by define.
func (e *emitter) target(id webnn.OperandID) string {
	operand := e.graph.Operands[id]
	if operand.Kind == webnn.KindOutput && operand.Descriptor.IsScalar() {
		return e.tmp()
	}
	return operandName(id, operand)
}

// define binds v as the value of the graph operand id.
func (e *emitter) define(id webnn.OperandID, v *model.Value) {
	operand := e.graph.Operands[id]
	e.operands.bind(id, v, operand.Descriptor)
	if operand.Kind != webnn.KindOutput {
		return
	}
	if operand.Descriptor.IsScalar() {
		// Model outputs cannot be scalars.
		e.outputs[id] = e.mil.Reshape(operandName(id, operand), v, []int64{1})
		return
	}
	e.outputs[id] = v
}

// scalar returns an immediate of the MIL type of x holding v.
func (e *emitter) scalar(x *model.Value, v float64) *model.Value {
	return e.mil.ScalarConst(x.DType(), v)
}

// declareInputs adds the graph inputs to the program, in graph order. Scalar inputs are
// declared with shape [1] and reshaped to scalars. A graph without inputs gets a
// placeholder input.
func (e *emitter) declareInputs() {
	for _, id := range e.graph.InputOperands {
		operand := e.graph.Operands[id]
		desc := operand.Descriptor
		name := operandName(id, operand)
		milType := mustMILDataType(desc.DataType())
		shape := dims(desc)
		if desc.IsScalar() {
			shape = []int64{1}
		}
		input := e.mil.Input(name, milType, shape...)
		e.inputs = append(e.inputs, InputInfo{
			Name:     operand.Name,
			MILName:  name,
			Shape:    shape,
			DataType: desc.DataType(),
		})
		if desc.IsScalar() {
			input = e.mil.Reshape(e.tmp(), input, []int64{})
		}
		e.operands.bind(id, input, desc)
	}

	if len(e.graph.InputOperands) == 0 {
		// CoreML cannot load a model without inputs.
		placeholder := e.mil.Input(placeholderName, model.Float16, 1)
		e.mil.Add(e.tmp(), placeholder, placeholder)
	}
}

// emitGraph lowers every operation of the graph, then declares the model outputs in
// graph order.
func (e *emitter) emitGraph() error {
	e.declareInputs()
	for i, op := range e.graph.Operations {
		for _, id := range op.InputIDs() {
			if _, bound := e.operands.lookup(id); bound || !e.isConstant(id) {
				continue
			}
			if err := materialize(e, id); err != nil {
				return err
			}
		}
		before := e.mil.NumOperations()
		if err := emitOperation(e, op); err != nil {
			return withContext(err, "operation #%d (%s)", i, op.Kind())
		}
		if klog.V(2).Enabled() {
			klog.Infof("operation #%d (%s): %d MIL operations", i, op.Kind(), e.mil.NumOperations()-before)
		}
	}
	for _, id := range e.graph.OutputOperands {
		v, ok := e.outputs[id]
		if !ok {
			panic(errors.Errorf("graph output %d was not produced", id))
		}
		e.mil.Output(v.Name(), v)
	}
	return nil
}

// emitOperation dispatches op to its emit function.
func emitOperation(e *emitter, op webnn.Operation) error {
	switch op := op.(type) {
	case *webnn.ArgMinMax:
		return emitArgMinMax(e, op)
	case *webnn.BatchNormalization:
		return emitBatchNormalization(e, op)
	case *webnn.Clamp:
		return emitClamp(e, op)
	case *webnn.Concat:
		return emitConcat(e, op)
	case *webnn.Conv2d:
		return emitConv2d(e, op)
	case *webnn.ElementWiseBinary:
		return emitElementWiseBinary(e, op)
	case *webnn.ElementWiseUnary:
		return emitElementWiseUnary(e, op)
	case *webnn.Elu:
		return emitActivation(e, op.Input, op.Output, "elu", map[string]float32{"alpha": op.Alpha})
	case *webnn.Expand:
		return emitExpand(e, op)
	case *webnn.Gather:
		return emitGather(e, op)
	case *webnn.Gelu:
		return emitGelu(e, op)
	case *webnn.Gemm:
		return emitGemm(e, op)
	case *webnn.Gru, *webnn.GruCell, *webnn.Lstm, *webnn.LstmCell:
		return notSupported("%s is not supported by CoreML", op.Kind())
	case *webnn.HardSigmoid:
		return emitActivation(e, op.Input, op.Output, "sigmoid_hard", map[string]float32{"alpha": op.Alpha, "beta": op.Beta})
	case *webnn.HardSwish:
		return emitHardSwish(e, op)
	case *webnn.InstanceNormalization:
		return emitInstanceNormalization(e, op)
	case *webnn.LayerNormalization:
		return emitLayerNormalization(e, op)
	case *webnn.LeakyRelu:
		return emitActivation(e, op.Input, op.Output, "leaky_relu", map[string]float32{"alpha": op.Alpha})
	case *webnn.Linear:
		return emitLinear(e, op)
	case *webnn.Matmul:
		return emitMatmul(e, op)
	case *webnn.Pad:
		return emitPad(e, op)
	case *webnn.Pool2d:
		return emitPool2d(e, op)
	case *webnn.Prelu:
		return emitPrelu(e, op)
	case *webnn.Reduce:
		return emitReduce(e, op)
	case *webnn.Relu:
		return emitActivation(e, op.Input, op.Output, "relu", nil)
	case *webnn.Resample2d:
		return emitResample2d(e, op)
	case *webnn.Reshape:
		return emitReshape(e, op)
	case *webnn.Sigmoid:
		return emitActivation(e, op.Input, op.Output, "sigmoid", nil)
	case *webnn.Slice:
		return emitSlice(e, op)
	case *webnn.Softmax:
		return emitSoftmax(e, op)
	case *webnn.Softplus:
		return emitActivation(e, op.Input, op.Output, "softplus", nil)
	case *webnn.Softsign:
		return emitActivation(e, op.Input, op.Output, "softsign", nil)
	case *webnn.Split:
		return emitSplit(e, op)
	case *webnn.Tanh:
		return emitActivation(e, op.Input, op.Output, "tanh", nil)
	case *webnn.Transpose:
		return emitTranspose(e, op)
	case *webnn.Where:
		return emitWhere(e, op)
	}
	return notSupported("operation %s is not supported by CoreML", op.Kind())
}
