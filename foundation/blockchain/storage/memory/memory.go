// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/starchain/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write appends the block. The block must carry the next height.
func (m *Memory) Write(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp := uint64(len(m.blocks)); block.Height != exp {
		return fmt.Errorf("%w: got %d, exp %d", database.ErrOutOfOrder, block.Height, exp)
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// GetBlock returns the block at the specified height.
func (m *Memory) GetBlock(height uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if height >= uint64(len(m.blocks)) {
		return database.Block{}, database.ErrNotFound
	}

	return m.blocks[height], nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the blocks in memory. This implements the database Iterator
// interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block height being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.Block, error) {
	if mi.eoc {
		return database.Block{}, database.ErrNotFound
	}

	block, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return block, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
