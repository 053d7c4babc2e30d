package api

import (
	"time"

	"github.com/go-pipesim/pipesim/pipeline"
)

// SessionCreateRequest represents a request to create a new session.
// Geometry fields are optional; omitted ones fall back to config.DefaultConfig.
type SessionCreateRequest struct {
	AddressSize uint   `json:"addressSize,omitempty"`
	L1IndexBits uint   `json:"l1IndexBits,omitempty"`
	L2IndexBits uint   `json:"l2IndexBits,omitempty"`
	L1Latency   uint32 `json:"l1Latency,omitempty"`
	L2Latency   uint32 `json:"l2Latency,omitempty"`
	RAMLatency  uint32 `json:"ramLatency,omitempty"`
	StackBase   uint32 `json:"stackBase,omitempty"`
}

// SessionCreateResponse represents the response from creating a session
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	Finished  bool   `json:"finished"`
	PC        uint32 `json:"pc"`
	Cycle     uint64 `json:"cycle"`
	FatalErr  string `json:"fatalError,omitempty"`
}

// LoadProgramRequest represents a request to load a program
type LoadProgramRequest struct {
	Source string `json:"source"` // assembly source text
}

// LoadProgramResponse represents the response from loading a program
type LoadProgramResponse struct {
	Success bool              `json:"success"`
	Errors  []string          `json:"errors,omitempty"`
	Symbols map[string]uint32 `json:"symbols,omitempty"`
}

// RegistersResponse represents the current register state
type RegistersResponse struct {
	R      [32]uint32 `json:"r"`
	PC     uint32     `json:"pc"`
	Flags  CPSRFlags  `json:"flags"`
	Cycles uint64     `json:"cycles"`
}

// CPSRFlags represents the four condition flags
type CPSRFlags struct {
	N bool `json:"n"`
	Z bool `json:"z"`
	C bool `json:"c"`
	V bool `json:"v"`
}

// MemoryResponse represents memory data
type MemoryResponse struct {
	Address uint32   `json:"address"`
	Words   []uint32 `json:"words"`
}

// DisassemblyResponse represents disassembled instructions
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// InstructionInfo represents a disassembled instruction
type InstructionInfo struct {
	Address     uint32 `json:"address"`
	Word        uint32 `json:"word"`
	Disassembly string `json:"disassembly"`
	Symbol      string `json:"symbol,omitempty"`
}

// BreakpointRequest represents a request to add/remove a breakpoint
type BreakpointRequest struct {
	Address   uint32 `json:"address"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointsResponse represents a list of breakpoints
type BreakpointsResponse struct {
	Breakpoints []uint32 `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint
type WatchpointRequest struct {
	Expression string `json:"expression"`
	Type       string `json:"type"` // "read", "write", or "readwrite"
}

// WatchpointResponse represents a created watchpoint
type WatchpointResponse struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	Type       string `json:"type"`
}

// WatchpointsResponse represents a list of watchpoints
type WatchpointsResponse struct {
	Watchpoints []WatchpointResponse `json:"watchpoints"`
}

// EvaluateRequest represents a request to evaluate an expression
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse represents the result of an expression evaluation
type EvaluateResponse struct {
	Value uint32 `json:"value"`
}

// TraceEntryInfo represents one recorded retirement
type TraceEntryInfo struct {
	Cycle     uint64 `json:"cycle"`
	PC        uint32 `json:"pc"`
	Category  string `json:"category"`
	Result    uint32 `json:"result,omitempty"`
	HasResult bool   `json:"hasResult"`
}

// TraceDataResponse represents accumulated trace entries
type TraceDataResponse struct {
	Entries []TraceEntryInfo `json:"entries"`
	Count   int              `json:"count"`
}

// StatisticsResponse represents pipeline performance counters
type StatisticsResponse struct {
	TotalCycles           uint64           `json:"totalCycles"`
	MemoryStallCycles     uint64           `json:"memoryStallCycles"`
	FetchStallCycles      uint64           `json:"fetchStallCycles"`
	DependencyStallCycles uint64           `json:"dependencyStallCycles"`
	RetiredCount          uint64           `json:"retiredCount"`
	CategoryCounts        map[string]uint64 `json:"categoryCounts"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event
type StateEvent struct {
	PC     uint32     `json:"pc"`
	R      [32]uint32 `json:"r"`
	Flags  CPSRFlags  `json:"flags"`
	Cycle  uint64     `json:"cycle"`
}

// ExecutionEvent represents an execution event, e.g. a breakpoint hit
type ExecutionEvent struct {
	Event   string `json:"event"`
	Address uint32 `json:"address,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToRegisterResponse snapshots a pipeline's register file and flags into
// an API response.
func ToRegisterResponse(p *pipeline.Pipeline) *RegistersResponse {
	regs, pc := p.Regs.Snapshot()
	return &RegistersResponse{
		R:  regs,
		PC: pc,
		Flags: CPSRFlags{
			N: p.Flags.N,
			Z: p.Flags.Z,
			C: p.Flags.C,
			V: p.Flags.V,
		},
		Cycles: p.Cycle,
	}
}
