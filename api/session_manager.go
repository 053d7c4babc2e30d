package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/go-pipesim/pipesim/config"
	"github.com/go-pipesim/pipesim/debugger"
	"github.com/go-pipesim/pipesim/loader"
	"github.com/go-pipesim/pipesim/memory"
	"github.com/go-pipesim/pipesim/pipeline"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session represents one running pipeline plus the debugging session bound
// to it, addressable by SessionManager via a generated ID.
type Session struct {
	ID        string
	Pipeline  *pipeline.Pipeline
	Debugger  *debugger.Debugger
	Output    *EventWriter
	CreatedAt time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// IsRunning reports whether a runLoop goroutine is currently ticking this
// session's pipeline.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop signals a running runLoop to halt at its next tick boundary. It is
// a no-op if the session isn't running.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// runLoop ticks the pipeline until it halts, a fatal error occurs, the
// debugger's breakpoint/watchpoint check fires, maxCycles is reached, or
// Stop is called. onRetire, if non-nil, is called after every tick that
// produced fresh trace entries; onDone is called once the loop exits.
func (s *Session) runLoop(maxCycles uint64, onRetire func(), onDone func()) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopCh = nil
		s.mu.Unlock()
		if onDone != nil {
			onDone()
		}
	}()

	for s.Pipeline.Cycle < maxCycles {
		select {
		case <-stopCh:
			return
		default:
		}
		if s.Pipeline.Finished() {
			return
		}
		before := len(s.Pipeline.Trace.Entries())
		if err := s.Pipeline.Tick(); err != nil {
			return
		}
		if onRetire != nil && len(s.Pipeline.Trace.Entries()) > before {
			onRetire()
		}
		if should, _ := s.Debugger.ShouldBreak(); should {
			return
		}
	}
}

// SessionManager manages multiple concurrent pipeline sessions
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// buildPipeline wires a fresh memory subsystem and pipeline from a
// SessionCreateRequest's geometry overrides, falling back to
// config.DefaultConfig for anything left zero.
func buildPipeline(req SessionCreateRequest) *pipeline.Pipeline {
	cfg := config.DefaultConfig()

	addressSize := cfg.Cache.AddressSize
	if req.AddressSize != 0 {
		addressSize = req.AddressSize
	}
	l1Index := cfg.Cache.L1IndexBits
	if req.L1IndexBits != 0 {
		l1Index = req.L1IndexBits
	}
	l2Index := cfg.Cache.L2IndexBits
	if req.L2IndexBits != 0 {
		l2Index = req.L2IndexBits
	}
	l1Latency := cfg.Cache.L1Latency
	if req.L1Latency != 0 {
		l1Latency = req.L1Latency
	}
	l2Latency := cfg.Cache.L2Latency
	if req.L2Latency != 0 {
		l2Latency = req.L2Latency
	}
	ramLatency := cfg.Cache.RAMReadLatency
	if req.RAMLatency != 0 {
		ramLatency = req.RAMLatency
	}
	stackBase := cfg.Execution.StackBase
	if req.StackBase != 0 {
		stackBase = req.StackBase
	}

	l1 := memory.NewLevel("L1", addressSize, l1Index, l1Latency)
	l2 := memory.NewLevel("L2", addressSize, l2Index, l2Latency)
	ram := memory.NewRAM(addressSize, ramLatency, cfg.Cache.RAMWriteLatency)
	sub := memory.NewSubsystem(l1, l2, ram)

	return pipeline.New(sub, stackBase)
}

// CreateSession creates a new session with a unique ID
func (sm *SessionManager) CreateSession(req SessionCreateRequest) (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	p := buildPipeline(req)
	dbg := debugger.NewDebugger(p)

	var output *EventWriter
	if sm.broadcaster != nil {
		output = NewEventWriter(sm.broadcaster, sessionID, "trace")
	}

	session := &Session{
		ID:        sessionID,
		Pipeline:  p,
		Debugger:  dbg,
		Output:    output,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// DestroySession removes a session by ID
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns a list of all session IDs
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// loadProgram assembles source, loads it into the session's RAM, and
// resets the debugger's symbol table and expression-value history.
func (s *Session) loadProgram(source string) (map[string]uint32, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	syms, err := loader.LoadAssembled(source, s.Pipeline.Mem.RAM, 0)
	if err != nil {
		return nil, []string{err.Error()}
	}

	symbols := make(map[string]uint32)
	for _, name := range syms.Names() {
		addr, _ := syms.Get(name)
		symbols[name] = addr
	}
	s.Debugger.LoadSymbols(symbols)
	s.Debugger.Evaluator.Reset()

	return symbols, nil
}

// generateSessionID generates a unique session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
