package ir

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

var log = commonlog.GetLogger("stencil.ir")

type constKey struct {
	value float64
	typ   string
}

// Session holds the lowering state of one stencil. It is not safe for
// concurrent use; lower independent stencils with independent sessions.
type Session struct {
	fields    *semantic.FieldTable
	symbols   *semantic.SymbolTable
	fieldSize int

	// Persist for the whole session so ids stay unique.
	counters   map[string]int
	operations map[string]Operation

	// Reset at every statement boundary.
	symbolTable map[string]string
	constants   map[constKey]string
	stack       []string
	emitted     map[string]bool
	body        []Instruction
	refs        map[string]int
	refOrder    []string
	nextArg     int
	reads       map[string]ast.Position
	startGuard  string

	upperOffsets []int
}

// NewSession returns a session with zeroed state. fieldSize resolves interval
// bounds anchored at END.
func NewSession(fields *semantic.FieldTable, symbols *semantic.SymbolTable, fieldSize int) *Session {
	s := &Session{
		fields:     fields,
		symbols:    symbols,
		fieldSize:  fieldSize,
		counters:   make(map[string]int),
		operations: make(map[string]Operation),
	}
	s.reset()
	return s
}

// reset clears the per-statement state. Id counters are kept.
func (s *Session) reset() {
	s.symbolTable = make(map[string]string)
	s.constants = make(map[constKey]string)
	s.stack = s.stack[:0]
	s.emitted = make(map[string]bool)
	s.body = nil
	s.refs = make(map[string]int)
	s.refOrder = nil
	s.nextArg = 0
	s.reads = make(map[string]ast.Position)
	s.startGuard = ""
}

// addOperation interns op and pushes its id. Structurally equal operations
// of one statement share an id; equal literals share the pool entry.
func (s *Session) addOperation(op Operation) string {
	key := op.Key()
	if id, ok := s.symbolTable[key]; ok {
		s.push(id)
		return id
	}

	c, isConst := op.(*Constant)
	if isConst {
		if id, ok := s.constants[constKey{c.Value, c.Type}]; ok {
			s.symbolTable[key] = id
			s.push(id)
			return id
		}
	}

	prefix := op.Kind().Prefix()
	id := fmt.Sprintf("%s%d", prefix, s.counters[prefix])
	s.counters[prefix]++
	s.operations[id] = op
	s.symbolTable[key] = id
	if isConst {
		s.constants[constKey{c.Value, c.Type}] = id
	}

	s.push(id)
	return id
}

// allocate reserves a fresh id of the given prefix without interning.
func (s *Session) allocate(prefix string) string {
	id := fmt.Sprintf("%s%d", prefix, s.counters[prefix])
	s.counters[prefix]++
	return id
}

func (s *Session) push(id string) {
	log.Debugf("push(%s)", id)
	s.stack = append(s.stack, id)
}

func (s *Session) pop() (string, error) {
	if len(s.stack) == 0 {
		return "", errors.InvariantViolation("evaluation stack underflow")
	}
	id := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	log.Debugf("pop(%s)", id)
	return id, nil
}

func (s *Session) top() (string, error) {
	if len(s.stack) == 0 {
		return "", errors.InvariantViolation("evaluation stack is empty")
	}
	return s.stack[len(s.stack)-1], nil
}

// emitOperation appends the instruction defining id once; later calls are no-ops.
func (s *Session) emitOperation(id string) (Operation, error) {
	op, ok := s.operations[id]
	if !ok {
		return nil, errors.InvariantViolation("no operation defines %%%s", id)
	}
	if s.emitted[id] {
		return op, nil
	}
	for _, operand := range op.Operands() {
		if !s.emitted[operand] {
			return nil, errors.InvariantViolation("%%%s is used by %%%s before it is defined", operand, id)
		}
	}
	s.emitted[id] = true
	s.body = append(s.body, &OpInstruction{ID: id, Op: op})
	log.Debugf("emit(%s)", id)
	return op, nil
}

// operation returns the operation behind id.
func (s *Session) operation(id string) Operation {
	return s.operations[id]
}

// reference assigns the first-use argument index of a field.
func (s *Session) reference(name string) int {
	if idx, ok := s.refs[name]; ok {
		return idx
	}
	idx := s.nextArg
	s.refs[name] = idx
	s.refOrder = append(s.refOrder, name)
	s.nextArg++
	return idx
}

// StackDepth reports the number of values not yet consumed.
func (s *Session) StackDepth() int {
	return len(s.stack)
}

// UpperOffsets lists the nonzero upper interval offsets seen so far.
func (s *Session) UpperOffsets() []int {
	return s.upperOffsets
}
