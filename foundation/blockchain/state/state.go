// Package state is the core API for the star registry chain and implements
// all the business rules and processing.
package state

import (
	"time"

	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/ardanlabs/starchain/foundation/blockchain/ownership"
	"github.com/ardanlabs/starchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/starchain/foundation/events"
)

// EventHandler defines a function that is called when events
// occur in the processing of the chain.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the chain.
type Config struct {
	Storage         database.Storage // Defaults to in memory storage.
	ChallengeWindow time.Duration    // How long an ownership challenge stays valid.
	Clock           func() time.Time // Clock for ownership challenges, defaults to time.Now.
	Events          *events.Events   // Optional feed of chain events.
	EvHandler       EventHandler
}

// State manages the chain and the ownership protocol guarding it.
type State struct {
	evHandler EventHandler
	evts      *events.Events

	db       *database.Database
	verifier *ownership.Verifier
}

// New constructs the chain, sealing the genesis block when the storage
// is empty.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New()
	}

	db, err := database.New(strg, ev)
	if err != nil {
		return nil, err
	}

	verifier := ownership.New(ownership.Config{
		Window: cfg.ChallengeWindow,
		Now:    cfg.Clock,
	})

	state := State{
		evHandler: ev,
		evts:      cfg.Events,
		db:        db,
		verifier:  verifier,
	}

	ev("state: New: started: height[%d]: window[%s]", db.Height(), verifier.Window())

	return &state, nil
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	return s.db.Close()
}

// ChallengeWindow returns how long an ownership challenge stays valid.
func (s *State) ChallengeWindow() time.Duration {
	return s.verifier.Window()
}

// =============================================================================

// send publishes the event to any registered listeners.
func (s *State) send(e events.Event) {
	if s.evts != nil {
		s.evts.Send(e)
	}
}
