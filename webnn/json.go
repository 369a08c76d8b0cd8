package webnn

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// The JSON graph format is a direct rendering of GraphInfo:
//
//	{
//	  "operands": [
//	    {"id": 1, "kind": "input", "name": "x", "dataType": "float32", "shape": [1, 3, 8, 8]},
//	    {"id": 2, "kind": "constant", "dataType": "float32", "shape": [3], "values": [1, 2, 3]},
//	    {"id": 3, "kind": "output", "name": "y", "dataType": "float32", "shape": [1, 3, 8, 8]}
//	  ],
//	  "operations": [
//	    {"op": "add", "a": 1, "b": 2, "output": 3}
//	  ]
//	}
//
// Constant buffers are given either as "values" (converted to the operand data type) or as
// the base64 encoded raw buffer in "data". When "inputs" and "outputs" are omitted they are
// the input and output operands in the order they are listed.

type jsonOperand struct {
	ID       OperandID   `json:"id"`
	Kind     OperandKind `json:"kind"`
	Name     string      `json:"name,omitempty"`
	DataType string      `json:"dataType"`
	Shape    []uint32    `json:"shape"`
	Values   []float64   `json:"values,omitempty"`
	Data     []byte      `json:"data,omitempty"`
}

type jsonGraph struct {
	Operands   []jsonOperand     `json:"operands"`
	Inputs     []OperandID       `json:"inputs,omitempty"`
	Outputs    []OperandID       `json:"outputs,omitempty"`
	Operations []json.RawMessage `json:"operations"`
}

// operationFactories return operations initialized with the WebNN default attributes.
var operationFactories = map[string]func() Operation{
	"argMin":             func() Operation { return &ArgMinMax{ArgKind: ArgMin} },
	"argMax":             func() Operation { return &ArgMinMax{ArgKind: ArgMax} },
	"batchNormalization": func() Operation { return &BatchNormalization{BatchNormalizationAttributes: BatchNormalizationAttributes{Axis: 1, Epsilon: 1e-5}} },
	"clamp": func() Operation {
		return &Clamp{MinValue: float32(math.Inf(-1)), MaxValue: float32(math.Inf(1))}
	},
	"concat":          func() Operation { return &Concat{} },
	"conv2d":          func() Operation { return &Conv2d{ConvKind: Conv2dDirect, Conv2dAttributes: defaultConv2dAttributes()} },
	"convTranspose2d": func() Operation { return &Conv2d{ConvKind: Conv2dTransposed, Conv2dAttributes: defaultConv2dAttributes()} },
	"elu":             func() Operation { return &Elu{Alpha: 1} },
	"expand":          func() Operation { return &Expand{} },
	"gather":          func() Operation { return &Gather{} },
	"gelu":            func() Operation { return &Gelu{} },
	"gemm":            func() Operation { return &Gemm{GemmAttributes: GemmAttributes{Alpha: 1, Beta: 1}} },
	"gru": func() Operation {
		return &Gru{GruAttributes: GruAttributes{Activations: []RecurrentActivation{ActivationSigmoid, ActivationTanh}}}
	},
	"gruCell": func() Operation {
		return &GruCell{GruAttributes: GruAttributes{Activations: []RecurrentActivation{ActivationSigmoid, ActivationTanh}}}
	},
	"hardSigmoid":           func() Operation { return &HardSigmoid{Alpha: 0.2, Beta: 0.5} },
	"hardSwish":             func() Operation { return &HardSwish{} },
	"instanceNormalization": func() Operation { return &InstanceNormalization{Epsilon: 1e-5} },
	"layerNormalization":    func() Operation { return &LayerNormalization{Epsilon: 1e-5} },
	"leakyRelu":             func() Operation { return &LeakyRelu{Alpha: 0.01} },
	"linear":                func() Operation { return &Linear{Alpha: 1} },
	"lstm": func() Operation {
		return &Lstm{LstmAttributes: LstmAttributes{Activations: []RecurrentActivation{ActivationSigmoid, ActivationTanh, ActivationTanh}}}
	},
	"lstmCell": func() Operation {
		return &LstmCell{LstmAttributes: LstmAttributes{Activations: []RecurrentActivation{ActivationSigmoid, ActivationTanh, ActivationTanh}}}
	},
	"matmul":     func() Operation { return &Matmul{} },
	"pad":        func() Operation { return &Pad{} },
	"prelu":      func() Operation { return &Prelu{} },
	"relu":       func() Operation { return &Relu{} },
	"resample2d": func() Operation { return &Resample2d{Resample2dAttributes: Resample2dAttributes{Axes: [2]uint32{2, 3}}} },
	"reshape":    func() Operation { return &Reshape{} },
	"sigmoid":    func() Operation { return &Sigmoid{} },
	"slice":      func() Operation { return &Slice{} },
	"softmax":    func() Operation { return &Softmax{} },
	"softplus":   func() Operation { return &Softplus{} },
	"softsign":   func() Operation { return &Softsign{} },
	"split":      func() Operation { return &Split{} },
	"tanh":       func() Operation { return &Tanh{} },
	"transpose":  func() Operation { return &Transpose{} },
	"where":      func() Operation { return &Where{} },
}

func init() {
	for i := range binaryKindNames {
		kind := BinaryKind(i)
		operationFactories[kind.String()] = func() Operation { return &ElementWiseBinary{BinaryKind: kind} }
	}
	for i := range unaryKindNames {
		kind := UnaryKind(i)
		operationFactories[kind.String()] = func() Operation { return &ElementWiseUnary{UnaryKind: kind} }
	}
	for i := range reduceKindNames {
		kind := ReduceKind(i)
		operationFactories[kind.String()] = func() Operation { return &Reduce{ReduceKind: kind} }
	}
	for i := range poolKindNames {
		kind := PoolKind(i)
		operationFactories[kind.String()] = func() Operation {
			return &Pool2d{PoolKind: kind, Pool2dAttributes: Pool2dAttributes{Strides: Size2d{Height: 1, Width: 1}, Dilations: Size2d{Height: 1, Width: 1}}}
		}
	}
}

func defaultConv2dAttributes() Conv2dAttributes {
	return Conv2dAttributes{Strides: Size2d{Height: 1, Width: 1}, Dilations: Size2d{Height: 1, Width: 1}, Groups: 1}
}

// NewOperation returns an operation of the given WebNN kind with default attributes.
func NewOperation(kind string) (Operation, error) {
	factory, ok := operationFactories[kind]
	if !ok {
		return nil, errors.Errorf("unknown operation %q", kind)
	}
	return factory(), nil
}

// ReadGraphJSON decodes a graph in the JSON graph format.
func ReadGraphJSON(r io.Reader) (*GraphInfo, error) {
	var jg jsonGraph
	if err := json.NewDecoder(r).Decode(&jg); err != nil {
		return nil, errors.Wrap(err, "decoding graph")
	}

	g := NewGraphInfo()
	for _, jo := range jg.Operands {
		if _, found := g.Operands[jo.ID]; found {
			return nil, errors.Errorf("operand %d is defined more than once", jo.ID)
		}
		dt, err := ParseDataType(jo.DataType)
		if err != nil {
			return nil, errors.WithMessagef(err, "operand %d", jo.ID)
		}
		desc, err := NewOperandDescriptor(dt, jo.Shape...)
		if err != nil {
			return nil, errors.WithMessagef(err, "operand %d", jo.ID)
		}
		g.Operands[jo.ID] = Operand{Kind: jo.Kind, Descriptor: desc, Name: jo.Name}

		switch jo.Kind {
		case KindConstant:
			data := jo.Data
			if jo.Values != nil {
				data, err = EncodeValues(dt, jo.Values)
				if err != nil {
					return nil, errors.WithMessagef(err, "constant %d", jo.ID)
				}
			}
			g.ConstantData[jo.ID] = data
		case KindInput:
			if jg.Inputs == nil {
				g.InputOperands = append(g.InputOperands, jo.ID)
			}
		case KindOutput:
			if jg.Outputs == nil {
				g.OutputOperands = append(g.OutputOperands, jo.ID)
			}
		}
	}
	if jg.Inputs != nil {
		g.InputOperands = jg.Inputs
	}
	if jg.Outputs != nil {
		g.OutputOperands = jg.Outputs
	}

	for i, raw := range jg.Operations {
		var head struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, errors.Wrapf(err, "decoding operation #%d", i)
		}
		op, err := NewOperation(head.Op)
		if err != nil {
			return nil, errors.WithMessagef(err, "operation #%d", i)
		}
		if err := json.Unmarshal(raw, op); err != nil {
			return nil, errors.Wrapf(err, "decoding operation #%d (%s)", i, head.Op)
		}
		if ln, ok := op.(*LayerNormalization); ok && ln.Axes == nil {
			// Default axes are [1, rank).
			if input, found := g.Operands[ln.Input]; found {
				for axis := 1; axis < input.Descriptor.Rank(); axis++ {
					ln.Axes = append(ln.Axes, uint32(axis))
				}
			}
		}
		g.Operations = append(g.Operations, op)
	}
	return g, nil
}

// LoadGraphJSON reads a graph from a JSON file.
func LoadGraphJSON(path string) (*GraphInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening graph file")
	}
	defer f.Close()
	g, err := ReadGraphJSON(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "graph file %q", path)
	}
	return g, nil
}
