package state

import (
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/ardanlabs/starchain/foundation/events"
)

// RequestChallenge returns the message the owner of the address needs to
// sign before submitting a star.
func (s *State) RequestChallenge(address string) string {
	msg := s.verifier.IssueChallenge(address)
	s.evHandler("state: RequestChallenge: address[%s]: message[%s]", address, msg)

	return msg
}

// Submit verifies the signed challenge and, if the owner is proven, appends
// a block recording the star.
func (s *State) Submit(address string, message string, sig string, star database.Star) (database.Block, error) {
	body, err := database.StarBody(address, star)
	if err != nil {
		return database.Block{}, err
	}

	// Verification has no dependency on the chain, so it happens before
	// the database takes the write lock.
	if err := s.verifier.Verify(message, address, sig); err != nil {
		s.evHandler("state: Submit: address[%s]: REJECTED: %s", address, err)
		return database.Block{}, err
	}

	block, err := s.db.Append(body)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: Submit: address[%s]: blk[%d]: hash[%s]", address, block.Height, block.Hash)
	s.send(events.Event{
		Type:   events.TypeBlockAdded,
		Height: block.Height,
		Hash:   block.Hash,
		Detail: address,
	})

	return block, nil
}
