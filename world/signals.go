package world

import "github.com/Arti-Code/biosynth/common"

// Kind enumerates the external signals the World drains and applies at
// the top of each tick (spec §4.6 step 1). Grounded on original
// `signals.rs`'s `UserAction`/`Signals` shapes, collapsed into one
// closed enum carrying its own payload rather than a struct of many
// independent optional booleans, since nothing in this module needs
// more than one pending action of each kind per tick.
type Kind int

const (
	SpawnAgent Kind = iota
	SaveSimulation
	LoadSimulation
	Reset
	Resize
	ExportSettings
	ImportSettings
)

// Signal is one queued external request. Only the fields relevant to
// its Kind are populated; the rest are zero.
type Signal struct {
	Kind Kind
	Name string      // simulation/agent/settings name for Save/Load/Export/Import
	Size common.Vec2 // new world dimensions for Resize
}

// Mailbox is the single-writer/single-reader queue signals arrive
// through (spec §5 "a process-wide signals value is a single-
// writer/single-reader mailbox drained at the top of each tick").
type Mailbox struct {
	pending []Signal
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Push enqueues a signal for the next Drain. Safe to call from outside
// the tick (the CLI layer, a future UI) as long as the caller does not
// also call Drain concurrently.
func (m *Mailbox) Push(s Signal) {
	m.pending = append(m.pending, s)
}

// Drain removes and returns every queued signal, oldest first.
func (m *Mailbox) Drain() []Signal {
	out := m.pending
	m.pending = nil
	return out
}
