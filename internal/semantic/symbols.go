package semantic

import (
	"sort"

	"github.com/eddie-c-davis/gt4py/internal/ast"
)

type SymbolKind int

const (
	SymbolField SymbolKind = iota
	SymbolTemporary
	SymbolParameter
	SymbolExternal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolField:
		return "field"
	case SymbolTemporary:
		return "temporary"
	case SymbolParameter:
		return "parameter"
	case SymbolExternal:
		return "external"
	}
	return "unknown"
}

type Symbol struct {
	Name     string
	Kind     SymbolKind
	Node     ast.Node // nil for externals
	Position ast.Position
	DataType ast.DataType
	Value    float64 // compile-time value of parameters and externals
}

// IsScalar reports whether the symbol folds to a constant.
func (s *Symbol) IsScalar() bool {
	return s.Kind == SymbolParameter || s.Kind == SymbolExternal
}

type SymbolTable struct {
	symbols map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
	}
}

func (st *SymbolTable) Define(name string, kind SymbolKind, node ast.Node, pos ast.Position) *Symbol {
	symbol := &Symbol{
		Name:     name,
		Kind:     kind,
		Node:     node,
		Position: pos,
	}
	st.symbols[name] = symbol
	return symbol
}

func (st *SymbolTable) Lookup(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	return nil
}

// Names returns the sorted names of every symbol of the given kinds.
func (st *SymbolTable) Names(kinds ...SymbolKind) []string {
	var names []string
	for name, symbol := range st.symbols {
		for _, k := range kinds {
			if symbol.Kind == k {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// BuildSymbolTable registers the fields, parameters and externals of a stencil.
// Parameters take their declared default (zero when absent); externals shadow
// nothing and are only consulted for names that are not parameters.
func BuildSymbolTable(def *ast.StencilDefinition) *SymbolTable {
	st := NewSymbolTable()
	for _, f := range def.Fields() {
		if st.Lookup(f.Name) != nil {
			continue
		}
		kind := SymbolField
		if !f.IsAPI {
			kind = SymbolTemporary
		}
		sym := st.Define(f.Name, kind, f, f.Pos)
		sym.DataType = f.DataType
	}
	for _, p := range def.Parameters {
		if st.Lookup(p.Name) != nil {
			continue
		}
		sym := st.Define(p.Name, SymbolParameter, p, p.Pos)
		sym.DataType = p.DataType
		if p.Init != nil {
			sym.Value = *p.Init
		}
	}
	for _, name := range sortedNames(def.Externals) {
		if st.Lookup(name) != nil {
			continue
		}
		sym := st.Define(name, SymbolExternal, nil, def.Pos)
		sym.DataType = ast.FLOAT64
		sym.Value = def.Externals[name]
	}
	return st
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
