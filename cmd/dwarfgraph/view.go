package main

import (
	"fmt"

	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

// The view types below are the CLI's own flat, json-tagged projection
// of the type graph — deliberately dumber than the graph itself (ids
// rendered as hex strings, no mutex, no manager back-reference) since
// nothing downstream of this CLI should have to link against the
// typegraph package just to read a dump.

// FunctionView is the JSON-facing projection of a typegraph.Function.
type FunctionView struct {
	Name       string       `json:"name"`
	ID         string       `json:"id"`
	ReturnType string       `json:"return_type"`
	Address    uint64       `json:"address"`
	Params     []ParamView  `json:"params"`
}

// ParamView is one FunctionView parameter.
type ParamView struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// VariableView is the JSON-facing projection of a typegraph.Variable.
type VariableView struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Location uint64 `json:"location"`
}

// TypeView is the JSON-facing projection of any BaseType-family entity.
type TypeView struct {
	Name     string          `json:"name"`
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	ByteSize uint64          `json:"byte_size,omitempty"`
	Members  []MemberView    `json:"members,omitempty"`
	Enumerators []EnumeratorView `json:"enumerators,omitempty"`
	Reference   string        `json:"reference,omitempty"`
}

// MemberView is one TypeView struct/union member.
type MemberView struct {
	Name           string `json:"name"`
	MemberLocation uint64 `json:"member_location"`
	BitOffset      uint64 `json:"bit_offset,omitempty"`
	BitSize        uint64 `json:"bit_size,omitempty"`
	Type           string `json:"type"`
}

// EnumeratorView is one TypeView enumerator.
type EnumeratorView struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

func idHex(id typegraph.SymbolID) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", uint64(id))
}

func newFunctionView(f *typegraph.Function) FunctionView {
	params := f.Params()
	pv := make([]ParamView, len(params))
	for i, p := range params {
		pv[i] = ParamView{Name: p.Name, Type: idHex(p.TypeID)}
	}
	return FunctionView{
		Name:       f.Name(),
		ID:         idHex(f.ID()),
		ReturnType: idHex(f.ReturnType()),
		Address:    f.Address(),
		Params:     pv,
	}
}

func newVariableView(v *typegraph.Variable) VariableView {
	return VariableView{
		Name:     v.Name(),
		ID:       idHex(v.ID()),
		Type:     idHex(v.TypeID()),
		Location: v.Location(),
	}
}

func newTypeView(e typegraph.Entity) TypeView {
	tv := TypeView{Name: e.Name(), ID: idHex(e.ID()), Kind: e.Kind().String()}
	switch t := e.(type) {
	case *typegraph.Structured:
		tv.ByteSize = t.ByteSize()
		for _, m := range t.Members() {
			tv.Members = append(tv.Members, MemberView{
				Name:           m.Name,
				MemberLocation: m.MemberLocation,
				BitOffset:      m.BitOffset,
				BitSize:        m.BitSize,
				Type:           idHex(m.TypeID),
			})
		}
	case *typegraph.Enum:
		for _, v := range t.Enumerators() {
			tv.Enumerators = append(tv.Enumerators, EnumeratorView{Name: v.Name, Value: v.Value})
		}
	case *typegraph.RefBaseType:
		tv.ByteSize = t.ByteSize()
		tv.Reference = idHex(t.Reference())
	case *typegraph.Array:
		tv.Reference = idHex(t.ElementType())
	case *typegraph.BaseType:
		tv.ByteSize = t.ByteSize()
	}
	return tv
}
