package debugger

import (
	"fmt"
	"sync"

	"github.com/go-pipesim/pipesim/pipeline"
)

// WatchType distinguishes how a watchpoint was requested. Detection is
// value-change based for all three: true read-only or write-only tracking
// would need a hook into the memory stage itself, not just a between-tick
// poll.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors a register or a memory word for a value change.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string // e.g. "r3" or "[0x1000]", for display
	Address    uint32 // resolved address, when !IsRegister
	IsRegister bool
	Register   int // regfile index, when IsRegister
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// WatchpointManager owns the set of watchpoints for one debugging session.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string, address uint32, isRegister bool, register int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// CheckWatchpoints polls every enabled watchpoint against p's current state
// and returns the first whose value has changed since the last check. Per
// Per the between-ticks observation rule, this must only be called
// between Tick calls, never from inside one.
func (wm *WatchpointManager) CheckWatchpoints(p *pipeline.Pipeline) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		var current uint32
		if wp.IsRegister {
			current = p.Regs.Read(wp.Register)
		} else {
			v, err := p.Mem.RAM.Read(wp.Address)
			if err != nil {
				continue
			}
			current = v
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// InitializeWatchpoint seeds a watchpoint's last-known value without
// treating the initial read as a trigger.
func (wm *WatchpointManager) InitializeWatchpoint(id int, p *pipeline.Pipeline) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	if wp.IsRegister {
		wp.LastValue = p.Regs.Read(wp.Register)
		return nil
	}
	v, err := p.Mem.RAM.Read(wp.Address)
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = v
	return nil
}

func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
