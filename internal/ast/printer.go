package ast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func (s *StencilDefinition) String() string {
	var b strings.Builder

	var params []string
	for _, f := range s.APIFields {
		params = append(params, f.String())
	}
	sig := strings.Join(params, ", ")
	if len(s.Parameters) > 0 {
		var vars []string
		for _, p := range s.Parameters {
			vars = append(vars, p.String())
		}
		sig += "; " + strings.Join(vars, ", ")
	}

	b.WriteString(fmt.Sprintf("stencil %s(%s) {\n", s.Name, sig))
	for _, name := range sortedKeys(s.Externals) {
		b.WriteString(fmt.Sprintf("  external %s = %s;\n", name, formatNumber(s.Externals[name], FLOAT64)))
	}
	for _, t := range s.Temporaries {
		b.WriteString("  temp " + t.String() + ";\n")
	}
	for _, c := range s.Computations {
		b.WriteString("  " + strings.ReplaceAll(c.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (f *FieldDecl) String() string {
	var axes strings.Builder
	for _, a := range f.Axes {
		axes.WriteString(a.String())
	}
	return fmt.Sprintf("%s: %s[%s]", f.Name, f.DataType, axes.String())
}

func (v *VarDecl) String() string {
	if v.Init != nil {
		return fmt.Sprintf("%s: %s = %s", v.Name, v.DataType, formatNumber(*v.Init, v.DataType))
	}
	return fmt.Sprintf("%s: %s", v.Name, v.DataType)
}

func (s *ScalarLiteral) String() string {
	return formatNumber(s.Value, s.DataType)
}

func (v *VarRef) String() string {
	return v.Name
}

func (f *FieldRef) String() string {
	if f.Offset == nil {
		return f.Name
	}
	return fmt.Sprintf("%s[%d, %d, %d]", f.Name, f.OffsetOf(I), f.OffsetOf(J), f.OffsetOf(K))
}

func (u *UnaryOpExpr) String() string {
	if u.Op == NOT {
		return "not " + u.Arg.String()
	}
	return u.Op.Symbol() + u.Arg.String()
}

func (b *BinOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.LHS.String(), b.Op.Symbol(), b.RHS.String())
}

func (t *TernaryOpExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Condition.String(), t.ThenExpr.String(), t.ElseExpr.String())
}

func (a *Assign) String() string {
	return fmt.Sprintf("%s = %s;", a.Target.String(), a.Value.String())
}

func (a *AugAssign) String() string {
	return fmt.Sprintf("%s %s= %s;", a.Target.String(), a.Op.Symbol(), a.Value.String())
}

func (i *If) String() string {
	s := fmt.Sprintf("if (%s) %s", i.Condition.String(), i.MainBody.String())
	if i.ElseBody != nil {
		s += " else " + i.ElseBody.String()
	}
	return s
}

func (b *BlockStmt) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, stmt := range b.Stmts {
		sb.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (a *AxisBound) String() string {
	switch {
	case a.Offset > 0:
		return fmt.Sprintf("%s + %d", a.Level, a.Offset)
	case a.Offset < 0:
		return fmt.Sprintf("%s - %d", a.Level, -a.Offset)
	}
	return a.Level.String()
}

func (a *AxisInterval) String() string {
	return fmt.Sprintf("interval(%s, %s)", a.Start.String(), a.End.String())
}

func (c *ComputationBlock) String() string {
	return fmt.Sprintf("computation(%s) %s %s", c.IterationOrder, c.Interval.String(), c.Body.String())
}

func formatNumber(v float64, dt DataType) string {
	if dt.IsInteger() {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
