package asm

import (
	"fmt"
	"strings"

	"github.com/go-pipesim/pipesim/isa"
)

// operandKind distinguishes the shapes an operand token sequence can take.
type operandKind int

const (
	operandRegister operandKind = iota
	operandImmediate
	operandLabel
	operandBracket // [base, #offset] or [base]
)

// operand is one parsed instruction argument.
type operand struct {
	Kind   operandKind
	Reg    int
	Imm    uint32
	Label  string
	Base   int // for operandBracket
	Offset uint32
	Pos    Position
}

// statement is one assembled line: either a bare label definition, an
// instruction, or both (a label immediately followed by an instruction on
// the same line).
type statement struct {
	Label    string
	Mnemonic string
	Cond     string // condition-code suffix for B/BL, e.g. "EQ"; "" means AL
	Operands []operand
	Pos      Position
}

// parser consumes a token stream into statements.
type parser struct {
	tokens []Token
	pos    int
}

func newParser(tokens []Token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) peek() Token  { return p.tokens[p.pos] }
func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// parseProgram parses every statement up to EOF, skipping blank lines.
func (p *parser) parseProgram() ([]statement, error) {
	var stmts []statement
	for p.peek().Type != TokenEOF {
		if p.peek().Type == TokenNewline {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.peek().Type != TokenEOF {
			if p.peek().Type != TokenNewline {
				return nil, &Error{Pos: p.peek().Pos, Kind: ErrorSyntax, Message: "expected end of line"}
			}
			p.advance()
		}
	}
	return stmts, nil
}

func (p *parser) parseStatement() (statement, error) {
	pos := p.peek().Pos
	var label string

	if p.peek().Type == TokenIdentifier && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == TokenColon {
		label = p.advance().Text
		p.advance() // colon
		if p.peek().Type == TokenNewline || p.peek().Type == TokenEOF {
			return statement{Label: label, Pos: pos}, nil
		}
	}

	if p.peek().Type != TokenIdentifier {
		return statement{}, &Error{Pos: p.peek().Pos, Kind: ErrorSyntax, Message: "expected mnemonic"}
	}
	mnemonic, cond := splitMnemonic(p.advance().Text)

	var operands []operand
	for p.peek().Type != TokenNewline && p.peek().Type != TokenEOF {
		op, err := p.parseOperand()
		if err != nil {
			return statement{}, err
		}
		operands = append(operands, op)
		if p.peek().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}

	return statement{Label: label, Mnemonic: mnemonic, Cond: cond, Operands: operands, Pos: pos}, nil
}

func (p *parser) parseOperand() (operand, error) {
	pos := p.peek().Pos

	switch p.peek().Type {
	case TokenNumber:
		v := p.advance().Value
		return operand{Kind: operandImmediate, Imm: v, Pos: pos}, nil

	case TokenLBracket:
		p.advance()
		if p.peek().Type != TokenIdentifier {
			return operand{}, &Error{Pos: p.peek().Pos, Kind: ErrorSyntax, Message: "expected base register after ["}
		}
		baseName := p.advance().Text
		base, ok := resolveRegister(baseName)
		if !ok {
			return operand{}, registerError(pos, baseName)
		}
		var offset uint32
		if p.peek().Type == TokenComma {
			p.advance()
			if p.peek().Type != TokenNumber {
				return operand{}, &Error{Pos: p.peek().Pos, Kind: ErrorSyntax, Message: "expected #offset"}
			}
			offset = p.advance().Value
		}
		if p.peek().Type != TokenRBracket {
			return operand{}, &Error{Pos: p.peek().Pos, Kind: ErrorSyntax, Message: "expected ]"}
		}
		p.advance()
		return operand{Kind: operandBracket, Base: base, Offset: offset, Pos: pos}, nil

	case TokenIdentifier:
		name := p.advance().Text
		if reg, ok := resolveRegister(name); ok {
			return operand{Kind: operandRegister, Reg: reg, Pos: pos}, nil
		}
		return operand{Kind: operandLabel, Label: name, Pos: pos}, nil
	}

	return operand{}, &Error{Pos: pos, Kind: ErrorSyntax, Message: fmt.Sprintf("unexpected token %q", p.peek().Text)}
}

// splitMnemonic separates a B/BL condition-code suffix ("BEQ" -> "B","EQ")
// from the base mnemonic. Mnemonics with no recognized suffix are returned
// unchanged with an empty condition ("AL" at encode time).
func splitMnemonic(text string) (mnemonic, cond string) {
	for _, base := range []string{"BL", "B"} {
		if len(text) > len(base) && text[:len(base)] == base {
			suffix := strings.ToUpper(text[len(base):])
			if _, ok := isa.ParseCondition(suffix); ok {
				return base, suffix
			}
		}
	}
	return text, ""
}
