package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pipesim/pipesim/regfile"
)

// resolveRegister maps a register mnemonic ("r0".."r31", "zr", "lr", "sp",
// "bp") to its regfile index.
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
	}
	if !strings.HasPrefix(lower, "r") {
		return 0, false
	}
	n, err := strconv.Atoi(lower[1:])
	if err != nil || n < 0 || n >= regfile.Count {
		return 0, false
	}
	return n, true
}

func registerError(pos Position, name string) error {
	return &Error{Pos: pos, Kind: ErrorUnknownRegister, Message: fmt.Sprintf("unknown register %q", name)}
}
