// Loading of pre-compiled programs for cmd/monty. monty itself has no
// source-to-bytecode compiler; this file is the thin JSON fixture format
// the reference CLI reads in its place, the counterpart to the teacher's
// cmd/hey reading PHP source text from a file.
package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/Iansi36283/monty/code"
	"github.com/Iansi36283/monty/opcodes"
	"github.com/Iansi36283/monty/values"
)

// program is the top-level shape of a monty fixture file: the entry code
// object plus the external function names the host declares up front.
type program struct {
	ExternalFunctions []string `json:"external_functions"`
	Code              jsonCode `json:"code"`
}

type jsonCode struct {
	Name          string         `json:"name"`
	Params        []jsonParam    `json:"params"`
	IsVariadic    bool           `json:"is_variadic"`
	IsCoroutine   bool           `json:"is_coroutine"`
	Instructions  []jsonInst     `json:"instructions"`
	Constants     []jsonValue    `json:"constants"`
	CodeConstants []jsonCode     `json:"code_constants"`
	NumLocals     int            `json:"num_locals"`
	LocalNames    []string       `json:"local_names"`
}

type jsonParam struct {
	Name       string     `json:"name"`
	HasDefault bool       `json:"has_default"`
	Default    *jsonValue `json:"default,omitempty"`
}

type jsonInst struct {
	Op       string          `json:"op"`
	A        int             `json:"a"`
	B        int             `json:"b"`
	Name     string          `json:"name,omitempty"`
	IsOS     bool            `json:"is_os,omitempty"`
	Shape    *jsonCallShape  `json:"shape,omitempty"`
}

type jsonCallShape struct {
	NumPositional int      `json:"num_positional"`
	HasStarArgs   bool     `json:"has_star_args"`
	KeywordNames  []string `json:"keyword_names"`
}

// jsonValue mirrors values.Value's tagged cases the fixture format needs to
// express as constants: None/Bool/Int/Float/Str/Bytes/Tuple. The fixture
// format has no case for Path or ObjectRef constants.
type jsonValue struct {
	Type  string      `json:"type"`
	Bool  bool        `json:"bool,omitempty"`
	Int   string      `json:"int,omitempty"` // decimal, arbitrary precision
	Float float64     `json:"float,omitempty"`
	Str   string      `json:"str,omitempty"`
	Bytes []byte      `json:"bytes,omitempty"`
	Tuple []jsonValue `json:"tuple,omitempty"`
}

func loadProgram(path string) (*program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &p, nil
}

func (jc jsonCode) toCodeObject() (*code.CodeObject, error) {
	params := make([]code.Param, len(jc.Params))
	for i, p := range jc.Params {
		cp := code.Param{Name: p.Name, HasDefault: p.HasDefault}
		if p.Default != nil {
			v, err := p.Default.toValue()
			if err != nil {
				return nil, err
			}
			cp.Default = v
		}
		params[i] = cp
	}
	consts := make([]values.Value, len(jc.Constants))
	for i, c := range jc.Constants {
		v, err := c.toValue()
		if err != nil {
			return nil, err
		}
		consts[i] = v
	}
	insts := make([]opcodes.Instruction, len(jc.Instructions))
	for i, inst := range jc.Instructions {
		op, ok := opcodes.Parse(inst.Op)
		if !ok {
			return nil, fmt.Errorf("instruction %d: unknown opcode %q", i, inst.Op)
		}
		ci := opcodes.Instruction{Op: op, A: inst.A, B: inst.B, Name: inst.Name, IsOS: inst.IsOS}
		if inst.Shape != nil {
			ci.Shape = &opcodes.CallShape{
				NumPositional: inst.Shape.NumPositional,
				HasStarArgs:   inst.Shape.HasStarArgs,
				KeywordNames:  inst.Shape.KeywordNames,
			}
		}
		insts[i] = ci
	}
	nested := make([]*code.CodeObject, len(jc.CodeConstants))
	for i, nc := range jc.CodeConstants {
		co, err := nc.toCodeObject()
		if err != nil {
			return nil, err
		}
		nested[i] = co
	}
	return &code.CodeObject{
		Name:          jc.Name,
		Params:        params,
		IsVariadic:    jc.IsVariadic,
		IsCoroutine:   jc.IsCoroutine,
		Instructions:  insts,
		Constants:     consts,
		CodeConstants: nested,
		NumLocals:     jc.NumLocals,
		LocalNames:    jc.LocalNames,
	}, nil
}

func (jv jsonValue) toValue() (values.Value, error) {
	switch jv.Type {
	case "", "none":
		return values.None(), nil
	case "bool":
		return values.Bool(jv.Bool), nil
	case "int":
		i, ok := new(big.Int).SetString(jv.Int, 10)
		if !ok {
			return values.Value{}, fmt.Errorf("invalid int constant %q", jv.Int)
		}
		return values.IntFromBig(i), nil
	case "float":
		return values.Float(jv.Float), nil
	case "str":
		return values.Str(jv.Str), nil
	case "bytes":
		return values.Bytes(jv.Bytes), nil
	case "tuple":
		items := make([]values.Value, len(jv.Tuple))
		for i, t := range jv.Tuple {
			v, err := t.toValue()
			if err != nil {
				return values.Value{}, err
			}
			items[i] = v
		}
		return values.Tuple(items...), nil
	}
	return values.Value{}, fmt.Errorf("unsupported constant type %q", jv.Type)
}
