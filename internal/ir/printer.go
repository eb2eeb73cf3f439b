package ir

import (
	"fmt"
	"strings"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
)

// Printer serializes a Program to stencil dialect text. It has no side
// effects besides its own buffer.
type Printer struct {
	unit   string
	indent int
	output strings.Builder
}

// NewPrinter creates a printer indenting with unit.
func NewPrinter(unit string) *Printer {
	if unit == "" {
		unit = config.DefaultIndent
	}
	return &Printer{unit: unit}
}

// Print returns the text of a program with the default indentation.
func Print(program *Program) string {
	return PrintIndented(program, config.DefaultIndent)
}

// PrintIndented returns the text of a program indented with unit.
func PrintIndented(program *Program, unit string) string {
	p := NewPrinter(unit)
	p.printProgram(program)
	return p.output.String()
}

// PrintInstructions renders a region body on its own, one instruction per line.
func PrintInstructions(body []Instruction) string {
	p := NewPrinter(config.DefaultIndent)
	p.printBody(body)
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString(p.unit)
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) blank() {
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *Program) {
	p.writeLine("module {")
	p.indent++

	args := make([]string, len(program.Signature))
	for i, arg := range program.Signature {
		args[i] = fmt.Sprintf("%%%s : %s", arg.Name(), arg.Type)
	}
	p.writeLine("func @%s(%s) attributes { stencil.program } {", program.Name, strings.Join(args, ", "))
	p.indent++

	for _, a := range program.Asserts {
		p.writeLine("stencil.assert %%%s_fd (%s:%s) : %s", a.Field, triple(a.Lower), triple(a.Upper), a.Type)
	}
	p.blank()

	for _, l := range program.Loads {
		p.writeLine("%%%s = stencil.load %%%s_fd : (%s) -> %s", l.Result, l.Field, l.FieldType, l.TempType)
	}
	p.blank()

	for _, apply := range program.Applies {
		p.printApply(apply)
		p.blank()
	}

	for _, s := range program.Stores {
		p.writeLine("stencil.store %%%s to %%%s_fd(%s : %s) : %s to %s",
			s.Value, s.Field, triple(s.Origin), triple(s.Extent), s.TempType, s.FieldType)
	}
	p.writeLine("return")

	p.indent--
	p.writeLine("}")
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printApply(apply *Apply) {
	args := make([]string, len(apply.Args))
	for i, arg := range apply.Args {
		args[i] = fmt.Sprintf("%%arg%d = %%%s : %s", arg.Index, arg.Value, arg.Type)
	}
	p.writeLine("%%%s = stencil.apply (%s) -> %s {", apply.Result, strings.Join(args, ", "), apply.TempType)
	p.indent++
	p.printBody(apply.Body)
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBody(body []Instruction) {
	for _, inst := range body {
		p.printInstruction(inst)
	}
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	case *OpInstruction:
		p.writeLine("%s", FormatOperation(i.ID, i.Op))

	case *IfInstruction:
		p.writeLine("%%%s = scf.if %%%s -> %s {", i.ID, i.Cond, i.Type)
		p.indent++
		p.printBody(i.Then)
		p.writeLine("scf.yield %%%s : %s", i.ThenValue, i.ThenType)
		p.indent--
		p.writeLine("} else {")
		p.indent++
		p.writeLine("scf.yield %%%s : %s", i.ElseValue, i.ElseType)
		p.indent--
		p.writeLine("}")

	case *ReturnInstruction:
		p.writeLine("stencil.return %%%s : %s", i.Value, i.Type)
	}
}

// FormatOperation renders the instruction defining id as op.
func FormatOperation(id string, op Operation) string {
	switch o := op.(type) {
	case *Constant:
		return fmt.Sprintf("%%%s = constant %s : %s", id, formatImmediate(o.Value, o.Type), o.Type)

	case *Access:
		return fmt.Sprintf("%%%s = stencil.access %%arg%d%s : (%s) -> %s", id, o.Arg, triple(o.Offset), o.TempType, o.Type)

	case *Unary:
		return fmt.Sprintf("%%%s = neg%s %%%s : %s", id, typeTag(o.Type), o.Operand, o.Type)

	case *Binary:
		if name, ok := arithmeticNames[o.Op]; ok {
			return fmt.Sprintf("%%%s = %s%s %%%s, %%%s : %s", id, name, typeTag(o.Type), o.LHS, o.RHS, o.Type)
		}
		cmp, _ := predicate(o.Op, o.Type)
		return fmt.Sprintf("%%%s = cmp%s \"%s\", %%%s, %%%s : %s", id, typeTag(o.Type), cmp, o.LHS, o.RHS, o.Type)

	case *Select:
		return fmt.Sprintf("%%%s = select %%%s, %%%s, %%%s : %s", id, o.Cond, o.Then, o.Else, o.Type)

	case *AxisIndex:
		return fmt.Sprintf("%%%s = stencil.index %d %s : %s", id, axisNumber(o.Axis), triple(o.Origin), IndexType)
	}
	return fmt.Sprintf("%%%s = <%T>", id, op)
}

func axisNumber(axis ast.Axis) int {
	return int(axis - ast.I)
}

func triple(v [3]int) string {
	return fmt.Sprintf("[%d, %d, %d]", v[0], v[1], v[2])
}
