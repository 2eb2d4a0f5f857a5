package state

import (
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
)

// Height returns the height of the latest block.
func (s *State) Height() int {
	return s.db.Height()
}

// LatestBlock returns a copy of the latest block.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// LookupByHeight returns the block at the specified height.
func (s *State) LookupByHeight(height uint64) (database.Block, error) {
	return s.db.BlockByHeight(height)
}

// LookupByHash returns the block with the specified hash.
func (s *State) LookupByHash(hash string) (database.Block, error) {
	return s.db.BlockByHash(hash)
}

// StarsOwnedBy returns the stars registered by the address in chain order.
func (s *State) StarsOwnedBy(address string) ([]database.StarRecord, error) {
	return s.db.StarsByOwner(address)
}

// Blocks returns a copy of the whole chain.
func (s *State) Blocks() ([]database.Block, error) {
	return s.db.Copy()
}
