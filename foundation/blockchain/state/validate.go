package state

import (
	"fmt"

	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/ardanlabs/starchain/foundation/events"
)

// ValidateOneBlock reports whether the block at the specified height still
// matches its hash.
func (s *State) ValidateOneBlock(height uint64) (bool, error) {
	valid, err := s.db.ValidateBlock(height)
	if err != nil {
		return false, err
	}

	if !valid {
		s.evHandler("state: ValidateOneBlock: blk[%d]: TAMPERED", height)
	}

	return valid, nil
}

// ValidateEntireChain audits every block and link and returns the
// discrepancies found. An empty result means the chain is consistent.
func (s *State) ValidateEntireChain() ([]database.Discrepancy, error) {
	discrepancies, err := s.db.ValidateChain()
	if err != nil {
		return nil, err
	}

	for _, d := range discrepancies {
		s.evHandler("state: ValidateEntireChain: %s", d)
	}

	latest := s.db.LatestBlock()
	s.send(events.Event{
		Type:   events.TypeChainValidated,
		Height: latest.Height,
		Hash:   latest.Hash,
		Detail: fmt.Sprintf("discrepancies[%d]", len(discrepancies)),
	})

	return discrepancies, nil
}

// ValidateEntireChainLog returns the discrepancy report as a list of
// readable messages.
func (s *State) ValidateEntireChainLog() ([]string, error) {
	discrepancies, err := s.ValidateEntireChain()
	if err != nil {
		return nil, err
	}

	log := make([]string, len(discrepancies))
	for i, d := range discrepancies {
		log[i] = d.String()
	}

	return log, nil
}
