package semantic

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

// Intent is the inferred read/write role of a field.
type Intent int

const (
	UNSET Intent = iota
	IN
	OUT
	INOUT
)

func (i Intent) String() string {
	switch i {
	case UNSET:
		return "unset"
	case IN:
		return "in"
	case OUT:
		return "out"
	case INOUT:
		return "inout"
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// Reads reports whether the stencil consumes the incoming value of the field.
func (i Intent) Reads() bool { return i == IN || i == INOUT }

// Writes reports whether the stencil produces a new value for the field.
func (i Intent) Writes() bool { return i == OUT || i == INOUT }

// Field is the metadata recorded for one declared field.
type Field struct {
	Name      string
	Dims      string // "?x" per axis
	DataType  ast.DataType
	Intent    Intent
	Temporary bool
	Decl      *ast.FieldDecl
}

// ElementType is the element type spelling used in stencil types. Fields
// without an explicit type are treated as f64.
func (f *Field) ElementType() string {
	if f.DataType == ast.AUTO || f.DataType == ast.INVALID {
		return ast.FLOAT64.String()
	}
	return f.DataType.String()
}

// FieldType returns "!stencil.field<?x?x?xf64>".
func (f *Field) FieldType() string {
	return fmt.Sprintf("!stencil.field<%s%s>", f.Dims, f.ElementType())
}

// TempType returns "!stencil.temp<?x?x?xf64>".
func (f *Field) TempType() string {
	return fmt.Sprintf("!stencil.temp<%s%s>", f.Dims, f.ElementType())
}

// FieldTable is the ordered field metadata of one stencil. Order follows
// declaration: api fields first, then temporaries.
type FieldTable struct {
	fields []*Field
	byName map[string]*Field
}

func newFieldTable() *FieldTable {
	return &FieldTable{byName: make(map[string]*Field)}
}

func (t *FieldTable) add(f *Field) bool {
	if _, exists := t.byName[f.Name]; exists {
		return false
	}
	t.fields = append(t.fields, f)
	t.byName[f.Name] = f
	return true
}

// Lookup returns the field with the given name, nil when undeclared.
func (t *FieldTable) Lookup(name string) *Field {
	return t.byName[name]
}

// Fields returns every field in declaration order.
func (t *FieldTable) Fields() []*Field {
	return t.fields
}

// APIFields returns the non-temporary fields in declaration order.
func (t *FieldTable) APIFields() []*Field {
	var api []*Field
	for _, f := range t.fields {
		if !f.Temporary {
			api = append(api, f)
		}
	}
	return api
}

// Names returns all field names in declaration order.
func (t *FieldTable) Names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

func (t *FieldTable) Len() int { return len(t.fields) }

// Validate reports every api field whose intent could not be inferred.
func (t *FieldTable) Validate() error {
	var errs []error
	for _, f := range t.fields {
		if f.Temporary || f.Intent != UNSET {
			continue
		}
		var pos ast.Position
		if f.Decl != nil {
			pos = f.Decl.Pos
		}
		errs = append(errs, errors.UnsetIntent(f.Name, pos))
	}
	return stderrors.Join(errs...)
}

// String renders the table as aligned rows, one field per line.
func (t *FieldTable) String() string {
	var b strings.Builder
	for _, f := range t.fields {
		kind := "api"
		if f.Temporary {
			kind = "temp"
		}
		fmt.Fprintf(&b, "%-16s %-5s %-8s %s%s\n", f.Name, kind, f.Intent, f.Dims, f.ElementType())
	}
	return b.String()
}

// CollectFields builds the field table of a stencil and infers the intent of
// every field from its uses. References to undeclared fields are skipped;
// Analyze reports them.
func CollectFields(def *ast.StencilDefinition) *FieldTable {
	c := &collector{table: newFieldTable()}
	for _, decl := range def.Fields() {
		c.table.add(&Field{
			Name:      decl.Name,
			Dims:      strings.Repeat("?x", len(decl.Axes)),
			DataType:  decl.DataType,
			Intent:    UNSET,
			Temporary: !decl.IsAPI,
			Decl:      decl,
		})
	}
	for _, comp := range def.Computations {
		c.visitStmt(comp.Body)
	}
	return c.table
}

type collector struct {
	table    *FieldTable
	onTarget bool
}

func (c *collector) visitStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Assign:
		c.onTarget = true
		c.visitExpr(s.Target)
		c.onTarget = false
		c.visitExpr(s.Value)
	case *ast.AugAssign:
		c.onTarget = true
		c.visitExpr(s.Target)
		c.onTarget = false
		c.visitExpr(s.Target)
		c.visitExpr(s.Value)
	case *ast.If:
		c.visitExpr(s.Condition)
		c.visitStmt(s.MainBody)
		if s.ElseBody != nil {
			c.visitStmt(s.ElseBody)
		}
	case *ast.BlockStmt:
		if s == nil {
			return
		}
		for _, inner := range s.Stmts {
			c.visitStmt(inner)
		}
	}
}

func (c *collector) visitExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.FieldRef:
		if e != nil {
			c.reference(e.Name)
		}
	case *ast.UnaryOpExpr:
		c.visitExpr(e.Arg)
	case *ast.BinOpExpr:
		c.visitExpr(e.LHS)
		c.visitExpr(e.RHS)
	case *ast.TernaryOpExpr:
		c.visitExpr(e.Condition)
		c.visitExpr(e.ThenExpr)
		c.visitExpr(e.ElseExpr)
	}
}

func (c *collector) reference(name string) {
	field := c.table.Lookup(name)
	if field == nil {
		return
	}
	if c.onTarget {
		switch field.Intent {
		case UNSET:
			field.Intent = OUT
		case IN:
			field.Intent = INOUT
		}
		return
	}
	switch field.Intent {
	case UNSET:
		field.Intent = IN
	case OUT:
		field.Intent = INOUT
	}
}
