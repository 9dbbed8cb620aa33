// Package loader reads the debug/test JSON serialization of internal/ast
// used by `railway run` (spec.md §6). It is explicitly not the `.rail`
// source grammar, which remains an external collaborator's job (spec.md
// §1); this is the minimal stand-in that lets the CLI drive the runtime
// core end-to-end without a parser.
package loader

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/raillang/railway/internal/ast"
)

// rawModule mirrors ast.Module's JSON shape.
type rawModule struct {
	Name      string            `json:"name"`
	Imports   map[string]string `json:"imports"`
	Globals   []rawGlobal       `json:"globals"`
	Functions map[string]rawFn  `json:"functions"`
}

type rawGlobal struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type rawFn struct {
	Name    string            `json:"name"`
	Borrows []string          `json:"borrows"`
	InOuts  []string          `json:"inouts"`
	Body    []json.RawMessage `json:"body"`
}

// LoadModule decodes one module from its debug JSON representation.
func LoadModule(data []byte) (*ast.Module, error) {
	var rm rawModule
	if err := json.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("loader: decoding module: %w", err)
	}
	mod := &ast.Module{
		Name:      rm.Name,
		Imports:   rm.Imports,
		Functions: make(map[string]*ast.Function, len(rm.Functions)),
	}
	for _, g := range rm.Globals {
		val, err := decodeExpr(g.Value)
		if err != nil {
			return nil, fmt.Errorf("loader: global %q: %w", g.Name, err)
		}
		mod.Globals = append(mod.Globals, ast.Global{Name: g.Name, Value: val})
	}
	for name, rf := range rm.Functions {
		body, err := decodeStmts(rf.Body)
		if err != nil {
			return nil, fmt.Errorf("loader: function %q: %w", name, err)
		}
		mod.Functions[name] = &ast.Function{
			Name:    rf.Name,
			Borrows: rf.Borrows,
			InOuts:  rf.InOuts,
			Body:    body,
		}
	}
	return mod, nil
}

// ---- expressions -----------------------------------------------------------

type rawNode struct {
	Kind string `json:"kind"`
}

func decodeExpr(data json.RawMessage) (ast.Expression, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var head rawNode
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Kind {
	case "number":
		var n struct {
			Num, Den int64
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		den := n.Den
		if den == 0 {
			den = 1
		}
		return &ast.NumberLit{Value: big.NewRat(n.Num, den)}, nil

	case "lookup":
		var n struct {
			Module string            `json:"module"`
			Name   string            `json:"name"`
			Index  []json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		idx := make([]ast.Expression, len(n.Index))
		for i, raw := range n.Index {
			e, err := decodeExpr(raw)
			if err != nil {
				return nil, err
			}
			idx[i] = e
		}
		return &ast.Lookup{Module: n.Module, Name: n.Name, Index: idx}, nil

	case "unary":
		var n struct {
			Op string          `json:"op"`
			X  json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: n.Op, X: x}, nil

	case "binary":
		var n struct {
			Op string          `json:"op"`
			X  json.RawMessage `json:"x"`
			Y  json.RawMessage `json:"y"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeExpr(n.Y)
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: n.Op, X: x, Y: y}, nil

	case "array":
		var n struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		elems := make([]ast.Expression, len(n.Elems))
		for i, raw := range n.Elems {
			e, err := decodeExpr(raw)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &ast.ArrayLiteral{Elems: elems}, nil

	case "range":
		var n struct {
			Start json.RawMessage `json:"start"`
			End   json.RawMessage `json:"end"`
			Step  json.RawMessage `json:"step"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		start, err := decodeExpr(n.Start)
		if err != nil {
			return nil, err
		}
		end, err := decodeExpr(n.End)
		if err != nil {
			return nil, err
		}
		step, err := decodeExpr(n.Step)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayRange{Start: start, End: end, Step: step}, nil

	case "tensor":
		var n struct {
			Fill  json.RawMessage   `json:"fill"`
			Shape []json.RawMessage `json:"shape"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		fill, err := decodeExpr(n.Fill)
		if err != nil {
			return nil, err
		}
		shape := make([]ast.Expression, len(n.Shape))
		for i, raw := range n.Shape {
			e, err := decodeExpr(raw)
			if err != nil {
				return nil, err
			}
			shape[i] = e
		}
		return &ast.ArrayTensor{Fill: fill, Shape: shape}, nil

	case "len":
		var n struct {
			X json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		lookup, ok := x.(*ast.Lookup)
		if !ok {
			return nil, fmt.Errorf("loader: len's operand must be a lookup")
		}
		return &ast.LenExpr{X: lookup}, nil

	case "tid":
		return &ast.ThreadIDExpr{}, nil

	case "threads":
		return &ast.NumThreadsExpr{}, nil

	default:
		return nil, fmt.Errorf("loader: unknown expression kind %q", head.Kind)
	}
}

// ---- statements -------------------------------------------------------------

func decodeStmts(raws []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, len(raws))
	for i, raw := range raws {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeLookup(data json.RawMessage) (*ast.Lookup, error) {
	e, err := decodeExpr(data)
	if err != nil {
		return nil, err
	}
	l, ok := e.(*ast.Lookup)
	if !ok {
		return nil, fmt.Errorf("loader: expected a lookup, got %T", e)
	}
	return l, nil
}

func decodeStmt(data json.RawMessage) (ast.Statement, error) {
	var head rawNode
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Kind {
	case "block":
		var n struct {
			Stmts []json.RawMessage `json:"stmts"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil

	case "let", "unlet":
		var n struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		val, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		if head.Kind == "let" {
			return &ast.LetStmt{Name: n.Name, Value: val}, nil
		}
		return &ast.UnletStmt{Name: n.Name, Value: val}, nil

	case "push", "pop":
		var n struct {
			Name  string          `json:"name"`
			Stack json.RawMessage `json:"stack"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		stack, err := decodeLookup(n.Stack)
		if err != nil {
			return nil, err
		}
		if head.Kind == "push" {
			return &ast.PushStmt{Name: n.Name, Stack: stack}, nil
		}
		return &ast.PopStmt{Name: n.Name, Stack: stack}, nil

	case "swap":
		var n struct {
			A json.RawMessage `json:"a"`
			B json.RawMessage `json:"b"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		a, err := decodeLookup(n.A)
		if err != nil {
			return nil, err
		}
		b, err := decodeLookup(n.B)
		if err != nil {
			return nil, err
		}
		return &ast.SwapStmt{A: a, B: b}, nil

	case "promote":
		var n struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.PromoteStmt{From: n.From, To: n.To}, nil

	case "modop":
		var n struct {
			Target json.RawMessage `json:"target"`
			Op     string          `json:"op"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		target, err := decodeLookup(n.Target)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ModOpStmt{Target: target, Op: n.Op, Value: val}, nil

	case "if":
		var n struct {
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
			Post json.RawMessage   `json:"post"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(n.Else)
		if err != nil {
			return nil, err
		}
		post, err := decodeExpr(n.Post)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Cond: cond, Then: then, Else: els, Post: post}, nil

	case "loop":
		var n struct {
			Entry json.RawMessage   `json:"entry"`
			Body  []json.RawMessage `json:"body"`
			Exit  json.RawMessage   `json:"exit"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		entry, err := decodeExpr(n.Entry)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		exit, err := decodeExpr(n.Exit)
		if err != nil {
			return nil, err
		}
		return &ast.LoopStmt{Entry: entry, Body: body, Exit: exit}, nil

	case "for":
		var n struct {
			Var   string            `json:"var"`
			Range json.RawMessage   `json:"range"`
			Body  []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		rangeExpr, err := decodeExpr(n.Range)
		if err != nil {
			return nil, err
		}
		rng, ok := rangeExpr.(*ast.ArrayRange)
		if !ok {
			return nil, fmt.Errorf("loader: for's range must be a range expression")
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Var: n.Var, Range: rng, Body: body}, nil

	case "barrier":
		var n struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &ast.BarrierStmt{Name: n.Name}, nil

	case "mutex":
		var n struct {
			Name string            `json:"name"`
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.MutexStmt{Name: n.Name, Body: body}, nil

	case "doyieldundo":
		var n struct {
			Do    []json.RawMessage `json:"do"`
			Yield []json.RawMessage `json:"yield"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		do, err := decodeStmts(n.Do)
		if err != nil {
			return nil, err
		}
		yield, err := decodeStmts(n.Yield)
		if err != nil {
			return nil, err
		}
		return &ast.DoYieldUndoStmt{Do: do, Yield: yield}, nil

	case "try":
		var n struct {
			Var   string            `json:"var"`
			Range json.RawMessage   `json:"range"`
			Body  []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		rangeExpr, err := decodeExpr(n.Range)
		if err != nil {
			return nil, err
		}
		rng, ok := rangeExpr.(*ast.ArrayRange)
		if !ok {
			return nil, fmt.Errorf("loader: try's range must be a range expression")
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.TryStmt{Var: n.Var, Range: rng, Body: body}, nil

	case "catch":
		var n struct {
			Cond json.RawMessage `json:"cond"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		return &ast.CatchStmt{Cond: cond}, nil

	case "call":
		var n struct {
			Uncall  bool            `json:"uncall"`
			Module  string          `json:"module"`
			Func    string          `json:"func"`
			Threads json.RawMessage `json:"threads"`
			Args    []string        `json:"args"`
			Outs    []string        `json:"outs"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		threads, err := decodeExpr(n.Threads)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{
			Uncall: n.Uncall, Module: n.Module, Func: n.Func,
			Threads: threads, Args: n.Args, Outs: n.Outs,
		}, nil

	case "print":
		var n struct {
			Newline bool `json:"newline"`
			Args    []struct {
				Str  *string         `json:"str"`
				Expr json.RawMessage `json:"expr"`
			} `json:"args"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		args := make([]ast.PrintArg, len(n.Args))
		for i, a := range n.Args {
			if a.Str != nil {
				args[i] = ast.PrintArg{Str: a.Str}
				continue
			}
			e, err := decodeExpr(a.Expr)
			if err != nil {
				return nil, err
			}
			args[i] = ast.PrintArg{Expr: e}
		}
		return &ast.PrintStmt{Newline: n.Newline, Args: args}, nil

	default:
		return nil, fmt.Errorf("loader: unknown statement kind %q", head.Kind)
	}
}
