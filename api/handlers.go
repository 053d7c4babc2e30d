package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-pipesim/pipesim/config"
	"github.com/go-pipesim/pipesim/debugger"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	p := session.Pipeline
	response := SessionStatusResponse{
		SessionID: sessionID,
		Finished:  p.Finished(),
		PC:        p.Regs.PC(),
		Cycle:     p.Cycle,
	}
	if p.FatalErr != nil {
		response.FatalErr = p.FatalErr.Error()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err == nil {
		session.Stop()
	}

	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	symbols, errs := session.loadProgram(req.Source)
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, LoadProgramResponse{Success: false, Errors: errs})
		return
	}

	writeJSON(w, http.StatusOK, LoadProgramResponse{Success: true, Symbols: symbols})
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if session.IsRunning() {
		writeError(w, http.StatusConflict, "Session is already running")
		return
	}

	maxCycles := config.DefaultConfig().Execution.MaxCycles

	go session.runLoop(maxCycles,
		func() { s.broadcastTrace(sessionID, session) },
		func() { s.broadcastStateChange(sessionID, session) },
	)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Run started"})
}

// handleStop handles POST /api/v1/session/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Stop()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Stop requested"})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if _, stepErr := session.Pipeline.Step(1); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Pipeline))
}

// handleStepOver handles POST /api/v1/session/{id}/step-over
func (s *Server) handleStepOver(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Debugger.SetStepOver()
	s.stepUntilBreak(session)

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Pipeline))
}

// handleStepOut handles POST /api/v1/session/{id}/step-out
func (s *Server) handleStepOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Debugger.SetStepOut()
	s.stepUntilBreak(session)

	s.broadcastStateChange(sessionID, session)
	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Pipeline))
}

// stepUntilBreak ticks a session synchronously until ShouldBreak fires,
// the pipeline halts, the debugger's step mode clears, or the configured
// maximum cycle count is reached. Used by step-over and step-out, which
// the debugger package models as "run, but stop me sooner than a
// breakpoint would".
func (s *Server) stepUntilBreak(session *Session) {
	maxCycles := session.Pipeline.Cycle + config.DefaultConfig().Execution.MaxCycles
	for session.Pipeline.Cycle < maxCycles && !session.Pipeline.Finished() {
		if err := session.Pipeline.Tick(); err != nil {
			return
		}
		if should, _ := session.Debugger.ShouldBreak(); should {
			return
		}
		if session.Debugger.StepMode == debugger.StepNone {
			return
		}
	}
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Stop()
	fresh := buildPipeline(SessionCreateRequest{})
	session.Pipeline = fresh
	session.Debugger = debugger.NewDebugger(fresh)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session reset"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, ToRegisterResponse(session.Pipeline))
}

// handleGetMemory handles GET /api/v1/session/{id}/memory
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	count, err := strconv.ParseUint(query.Get("count"), 10, 32)
	if err != nil || count == 0 {
		count = 1
	}

	const maxWords = 65536
	if count > maxWords {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d words)", maxWords))
		return
	}

	words := make([]uint32, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := session.Pipeline.Mem.RAM.Read(uint32(address) + uint32(i)) // #nosec G115 -- parseHexOrDec validates fit
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read memory: %v", err))
			return
		}
		words = append(words, v)
	}

	writeJSON(w, http.StatusOK, MemoryResponse{
		Address: uint32(address), // #nosec G115 -- parseHexOrDec validates fit
		Words:   words,
	})
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	count, err := strconv.ParseUint(query.Get("count"), 10, 32)
	if err != nil || count == 0 {
		count = 10
	}

	const maxDisassembly = 1000
	if count > maxDisassembly {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Count too large (max %d)", maxDisassembly))
		return
	}

	instructions := make([]InstructionInfo, 0, count)
	for i := uint64(0); i < count; i++ {
		addr := uint32(address) + uint32(i) // #nosec G115 -- parseHexOrDec validates fit
		word, err := session.Pipeline.Mem.RAM.Read(addr)
		if err != nil {
			break
		}
		instructions = append(instructions, InstructionInfo{
			Address:     addr,
			Word:        word,
			Disassembly: disassemble(word),
			Symbol:      symbolFor(session.Debugger.Symbols, addr),
		})
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: instructions})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		session.Debugger.Breakpoints.AddBreakpoint(req.Address, false, req.Condition)
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint added"})

	case http.MethodDelete:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := session.Debugger.Breakpoints.DeleteBreakpointAt(req.Address); err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	breakpoints := session.Debugger.Breakpoints.GetAllBreakpoints()
	addresses := make([]uint32, len(breakpoints))
	for i, bp := range breakpoints {
		addresses[i] = bp.Address
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: addresses})
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	watchType := req.Type
	if watchType == "" {
		watchType = "readwrite"
	}
	var wt debugger.WatchType
	switch watchType {
	case "read":
		wt = debugger.WatchRead
	case "write":
		wt = debugger.WatchWrite
	case "readwrite":
		wt = debugger.WatchReadWrite
	default:
		writeError(w, http.StatusBadRequest, "Invalid watchpoint type (must be 'read', 'write', or 'readwrite')")
		return
	}

	isRegister := false
	address := uint32(0)
	if addr, ok := session.Debugger.Symbols[req.Expression]; ok {
		address = addr
	} else if addr, err := session.Debugger.ResolveAddress(req.Expression); err == nil {
		address = addr
	} else {
		isRegister = true
	}

	wp := session.Debugger.Watchpoints.AddWatchpoint(wt, req.Expression, address, isRegister, 0)
	if err := session.Debugger.Watchpoints.InitializeWatchpoint(wp.ID, session.Pipeline); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to initialize watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, WatchpointResponse{
		ID:         wp.ID,
		Expression: wp.Expression,
		Type:       watchType,
	})
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Debugger.Watchpoints.DeleteWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Watchpoint removed"})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	all := session.Debugger.Watchpoints.GetAllWatchpoints()
	out := make([]WatchpointResponse, len(all))
	for i, wp := range all {
		typeName := "readwrite"
		switch wp.Type {
		case debugger.WatchRead:
			typeName = "read"
		case debugger.WatchWrite:
			typeName = "write"
		}
		out[i] = WatchpointResponse{ID: wp.ID, Expression: wp.Expression, Type: typeName}
	}

	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: out})
}

// handleEvaluateExpression handles POST /api/v1/session/{id}/evaluate
func (s *Server) handleEvaluateExpression(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req EvaluateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, err := session.Debugger.Evaluator.EvaluateExpression(req.Expression, session.Pipeline, session.Debugger.Symbols)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to evaluate expression: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{Value: value})
}

// handleGetSourceMap handles GET /api/v1/session/{id}/sourcemap
func (s *Server) handleGetSourceMap(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": session.Debugger.Symbols,
	})
}

// handleGetConsoleOutput handles GET /api/v1/session/{id}/console
//
// This simulator has no console I/O opcodes; "console" here is the
// buffered text of retired instructions the run loop has written via the
// session's EventWriter, the closest analogue to a stdout stream.
func (s *Server) handleGetConsoleOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	output := ""
	if session.Output != nil {
		output = session.Output.GetBuffer()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"output": output})
}

// handleTraceControl handles POST /api/v1/session/{id}/trace/{enable|disable}
func (s *Server) handleTraceControl(w http.ResponseWriter, r *http.Request, sessionID string, action string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch action {
	case "enable":
		session.Pipeline.Trace.Enabled = true
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace enabled"})
	case "disable":
		session.Pipeline.Trace.Enabled = false
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Execution trace disabled"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action (must be 'enable' or 'disable')")
	}
}

// handleTraceData handles GET /api/v1/session/{id}/trace/data
func (s *Server) handleTraceData(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries := session.Pipeline.Trace.Entries()
	apiEntries := make([]TraceEntryInfo, len(entries))
	for i, entry := range entries {
		apiEntries[i] = TraceEntryInfo{
			Cycle:     entry.Cycle,
			PC:        entry.PC,
			Category:  entry.Category.String(),
			Result:    entry.Result,
			HasResult: entry.HasResult,
		}
	}

	writeJSON(w, http.StatusOK, TraceDataResponse{Entries: apiEntries, Count: len(apiEntries)})
}

// handleStatsControl handles POST /api/v1/session/{id}/stats/{enable|disable}
func (s *Server) handleStatsControl(w http.ResponseWriter, r *http.Request, sessionID string, action string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch action {
	case "enable":
		session.Pipeline.Statistics.Enabled = true
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Statistics collection enabled"})
	case "disable":
		session.Pipeline.Statistics.Enabled = false
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Statistics collection disabled"})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action (must be 'enable' or 'disable')")
	}
}

// handleStats handles GET /api/v1/session/{id}/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	stats := session.Pipeline.Statistics
	counts := make(map[string]uint64, len(stats.CategoryCounts))
	for cat, n := range stats.CategoryCounts {
		counts[cat.String()] = n
	}

	writeJSON(w, http.StatusOK, StatisticsResponse{
		TotalCycles:           stats.TotalCycles,
		MemoryStallCycles:     stats.MemoryStallCycles,
		FetchStallCycles:      stats.FetchStallCycles,
		DependencyStallCycles: stats.DependencyStallCycles,
		RetiredCount:          stats.RetiredCount,
		CategoryCounts:        counts,
	})
}

// parseHexOrDec parses a string as either hexadecimal (0x prefix) or decimal
func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 32)
	}

	return strconv.ParseUint(s, 10, 32)
}

// broadcastStateChange broadcasts pipeline register/flag state to WebSocket clients
func (s *Server) broadcastStateChange(sessionID string, session *Session) {
	if s.broadcaster == nil {
		return
	}

	regs := ToRegisterResponse(session.Pipeline)
	data := map[string]interface{}{
		"pc":     regs.PC,
		"cycles": regs.Cycles,
		"r":      regs.R,
		"flags": map[string]bool{
			"n": regs.Flags.N,
			"z": regs.Flags.Z,
			"c": regs.Flags.C,
			"v": regs.Flags.V,
		},
		"finished": session.Pipeline.Finished(),
	}

	s.broadcaster.BroadcastState(sessionID, data)
}

// broadcastTrace writes the latest trace entry to the session's output
// stream, giving a running pipeline a console-like feed of retirements.
func (s *Server) broadcastTrace(sessionID string, session *Session) {
	if session.Output == nil {
		return
	}
	entries := session.Pipeline.Trace.Entries()
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	line := fmt.Sprintf("[%d] 0x%08X %s\n", last.Cycle, last.PC, last.Category)
	_, _ = session.Output.Write([]byte(line))
}
