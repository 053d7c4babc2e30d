package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pipesim/pipesim/pipeline"
	"github.com/go-pipesim/pipesim/regfile"
)

// resolveRegister maps a register name (case-insensitive) to its regfile
// index: r0..r31, or the aliases zr/lr/sp/bp/pc.
func resolveRegister(name string) (int, bool) {
	lower := strings.ToLower(name)
	switch lower {
	case "zr":
		return regfile.ZR, true
	case "lr":
		return regfile.LR, true
	case "sp":
		return regfile.SP, true
	case "bp":
		return regfile.BP, true
	case "pc":
		return regfile.PC, true
	}
	if len(lower) >= 2 && lower[0] == 'r' {
		n, err := strconv.Atoi(lower[1:])
		if err == nil && n >= 0 && n < regfile.Count {
			return n, true
		}
	}
	return 0, false
}

// ExpressionEvaluator evaluates the small arithmetic/register/memory
// expression language breakpoint conditions and print commands use, and
// remembers evaluated values for $1, $2, ... back-references.
type ExpressionEvaluator struct {
	valueHistory []uint32
	valueNumber  int
}

func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, p *pipeline.Pipeline, symbols map[string]uint32) (uint32, error) {
	result, err := e.evaluate(expr, p, symbols)
	if err != nil {
		return 0, err
	}
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)
	return result, nil
}

// Evaluate evaluates expr as a breakpoint condition: nonzero is true.
func (e *ExpressionEvaluator) Evaluate(expr string, p *pipeline.Pipeline, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, p, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, p *pipeline.Pipeline, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	if val, err := e.trySimpleEval(expr, p, symbols); err == nil {
		return val, nil
	}

	// Simplified binary-operator scan: look for the first operator with
	// whitespace around it, left to right, so hex literals like "0xFF"
	// never get mistaken for an operand split.
	operators := []string{"<<", ">>", "&", "|", "^", "+", "-", "*", "/"}
	for _, op := range operators {
		patterns := []string{" " + op + " ", " " + op, op + " "}
		for _, pattern := range patterns {
			idx := strings.Index(expr, pattern)
			if idx < 0 {
				continue
			}
			opPos := idx
			if pattern[0] == ' ' {
				opPos++
			}

			left := strings.TrimSpace(expr[:opPos])
			right := strings.TrimSpace(expr[opPos+len(op):])
			if left == "" || right == "" {
				continue
			}

			leftVal, err := e.evaluate(left, p, symbols)
			if err != nil {
				continue
			}
			rightVal, err := e.evaluate(right, p, symbols)
			if err != nil {
				continue
			}
			return applyOperator(leftVal, rightVal, op)
		}
	}

	return 0, fmt.Errorf("invalid expression: %s", expr)
}

func (e *ExpressionEvaluator) trySimpleEval(expr string, p *pipeline.Pipeline, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		return e.evalMemory(expr[1:len(expr)-1], p, symbols)
	}
	if strings.HasPrefix(expr, "*") {
		return e.evalMemory(expr[1:], p, symbols)
	}

	if strings.HasPrefix(expr, "$") {
		num, err := strconv.Atoi(expr[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", expr)
		}
		return e.GetValue(num)
	}

	if reg, ok := resolveRegister(expr); ok {
		return p.Regs.Read(reg), nil
	}

	if addr, exists := symbols[expr]; exists {
		return addr, nil
	}

	return parseLiteral(expr)
}

func (e *ExpressionEvaluator) evalMemory(addrExpr string, p *pipeline.Pipeline, symbols map[string]uint32) (uint32, error) {
	addr, err := e.evaluate(strings.TrimSpace(addrExpr), p, symbols)
	if err != nil {
		return 0, err
	}
	value, err := p.Mem.RAM.Read(addr)
	if err != nil {
		return 0, fmt.Errorf("failed to read memory at 0x%08X: %w", addr, err)
	}
	return value, nil
}

// parseLiteral parses a numeric literal: 0x-hex, 0b-binary, or decimal
// (including negative, reinterpreted as two's complement).
func parseLiteral(expr string) (uint32, error) {
	lower := strings.ToLower(expr)
	switch {
	case strings.HasPrefix(lower, "0x"):
		val, err := strconv.ParseUint(lower[2:], 16, 32)
		return uint32(val), err
	case strings.HasPrefix(lower, "0b"):
		val, err := strconv.ParseUint(lower[2:], 2, 32)
		return uint32(val), err
	default:
		val, err := strconv.ParseInt(expr, 10, 32)
		return uint32(val), err
	}
}

func applyOperator(left, right uint32, op string) (uint32, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<":
		return left << right, nil
	case ">>":
		return left >> right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

// Reset clears the value history, e.g. when a new program is loaded.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
