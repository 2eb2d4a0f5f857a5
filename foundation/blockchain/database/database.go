// Package database maintains the append only chain of sealed blocks and the
// integrity checks that can be run against it.
package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
)

// Database manages the ordered sequence of sealed blocks. All writes are
// serialized and readers always see the chain either before or after an
// append, never in between.
type Database struct {
	mu sync.RWMutex

	height      int
	latestBlock Block
	storage     Storage
	evHandler   func(v string, args ...any)
}

// New constructs the database over the specified storage. Any blocks already
// held by the storage are loaded and checked. An empty storage gets the
// genesis block sealed before the database is returned.
func New(storage Storage, evHandler func(v string, args ...any)) (*Database, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	db := Database{
		height:    -1,
		storage:   storage,
		evHandler: ev,
	}

	// Read all the blocks from storage and make sure they form a chain.
	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if err := db.checkNext(block); err != nil {
			return nil, fmt.Errorf("loading blk[%d]: %w", block.Height, err)
		}

		db.height++
		db.latestBlock = block
	}

	if db.height == -1 {
		body, err := EncodeBody(genesisData)
		if err != nil {
			return nil, err
		}

		block, err := db.Append(body)
		if err != nil {
			return nil, fmt.Errorf("sealing genesis: %w", err)
		}
		ev("database: New: genesis: blk[%d]: hash[%s]", block.Height, block.Hash)
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Height returns the height of the latest block, -1 if there are no blocks.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.height
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Append seals a new block with the specified body at the next height and
// writes it to storage. The read height, seal, and write sequence happens
// under the write lock.
func (db *Database) Append(body string) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	// The genesis block links to the zero hash.
	prevBlockHash := signature.ZeroHash
	if db.height >= 0 {
		prevBlockHash = db.latestBlock.Hash
	}

	height := uint64(db.height + 1)
	block := Seal(height, uint64(time.Now().UTC().Unix()), prevBlockHash, body)

	if err := db.storage.Write(block); err != nil {
		return Block{}, fmt.Errorf("writing blk[%d]: %w", height, err)
	}

	db.height++
	db.latestBlock = block

	db.evHandler("database: Append: blk[%d]: prev[%s]: hash[%s]", block.Height, block.PrevBlockHash, block.Hash)

	return block, nil
}

// BlockByHeight returns the block at the specified height.
func (db *Database) BlockByHeight(height uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.height < 0 || height > uint64(db.height) {
		return Block{}, fmt.Errorf("height %d: %w", height, ErrNotFound)
	}

	block, err := db.storage.GetBlock(height)
	if err != nil {
		return Block{}, fmt.Errorf("height %d: %w: %w", height, ErrNotFound, err)
	}

	return block, nil
}

// BlockByHash returns the first block in the chain with the specified hash.
func (db *Database) BlockByHash(hash string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return Block{}, err
		}

		if block.Hash == hash {
			return block, nil
		}
	}

	return Block{}, fmt.Errorf("hash %s: %w", hash, ErrNotFound)
}

// Copy returns a consistent copy of every block in chain order.
func (db *Database) Copy() ([]Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, 0, db.height+1)

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// StarsByOwner returns the star records owned by the address in chain
// order. Blocks that do not carry a star record, like genesis, are skipped.
func (db *Database) StarsByOwner(address string) ([]StarRecord, error) {
	blocks, err := db.Copy()
	if err != nil {
		return nil, err
	}

	stars := []StarRecord{}
	for _, block := range blocks {
		rec, ok := ParseStar(block)
		if !ok || !rec.OwnedBy(address) {
			continue
		}
		stars = append(stars, rec)
	}

	return stars, nil
}

// =============================================================================

// checkNext validates a block read from storage is the next block in the
// chain held in memory.
func (db *Database) checkNext(block Block) error {
	nextHeight := uint64(db.height + 1)
	if block.Height != nextHeight {
		return fmt.Errorf("%w: got %d, exp %d", ErrOutOfOrder, block.Height, nextHeight)
	}

	prevBlockHash := signature.ZeroHash
	if db.height >= 0 {
		prevBlockHash = db.latestBlock.Hash
	}

	if block.PrevBlockHash != prevBlockHash {
		return errors.New("previous block hash doesn't match the chain")
	}

	if !block.IsIntact() {
		return errors.New("block hash doesn't match its content")
	}

	return nil
}
