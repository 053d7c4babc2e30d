// Package loader ingests an assembled program into RAM. The wire format is
// the binary-line contract: one instruction per
// line, each line a 32-character ASCII binary string (MSB first), an
// optional trailing comment introduced by '#' and stripped, blank lines
// permitted.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pipesim/pipesim/asm"
	"github.com/go-pipesim/pipesim/memory"
)

// LoaderError reports a malformed program image: a line that isn't exactly
// 32 characters of {0,1}, or a program that doesn't fit in RAM.
type LoaderError struct {
	Line   int // 1-based source line number; 0 when not line-specific
	Reason string
}

func (e *LoaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("loader: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("loader: %s", e.Reason)
}

// Program is the result of parsing a binary-line source: the words to load,
// in source order.
type Program struct {
	Words []uint32
}

// Parse reads a binary-line program from r, stripping '#' comments and
// blank lines, and converting each remaining line to a 32-bit word.
func Parse(r io.Reader) (*Program, error) {
	var words []uint32
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) != 32 {
			return nil, &LoaderError{Line: lineNo, Reason: fmt.Sprintf("expected 32 binary characters, got %d", len(line))}
		}
		v, err := strconv.ParseUint(line, 2, 32)
		if err != nil {
			return nil, &LoaderError{Line: lineNo, Reason: fmt.Sprintf("not a binary string: %q", line)}
		}
		words = append(words, uint32(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: reading program: %w", err)
	}
	return &Program{Words: words}, nil
}

// Load parses src and writes its words into ram starting at base. It
// returns a LoaderError if the program doesn't fit.
func Load(r io.Reader, ram *memory.RAM, base uint32) error {
	prog, err := Parse(r)
	if err != nil {
		return err
	}
	if uint64(base)+uint64(len(prog.Words)) > uint64(ram.Size()) {
		return &LoaderError{Reason: fmt.Sprintf("program of %d words at base %d overflows %d-word RAM", len(prog.Words), base, ram.Size())}
	}
	if err := ram.LoadWords(base, prog.Words); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// LoadString is a convenience wrapper over Load for in-memory sources (tests,
// embedded fixtures).
func LoadString(src string, ram *memory.RAM, base uint32) error {
	return Load(strings.NewReader(src), ram, base)
}

// LoadAssembled assembles source directly (skipping the binary-line
// round-trip) and loads the result into ram at base, returning the symbol
// table so a debugger can resolve breakpoints by label as well as address.
func LoadAssembled(source string, ram *memory.RAM, base uint32) (*asm.SymbolTable, error) {
	words, syms, err := asm.Assemble(source)
	if err != nil {
		return nil, err
	}
	if uint64(base)+uint64(len(words)) > uint64(ram.Size()) {
		return nil, &LoaderError{Reason: fmt.Sprintf("assembled program of %d words at base %d overflows %d-word RAM", len(words), base, ram.Size())}
	}
	if err := ram.LoadWords(base, words); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return syms, nil
}
