package database

import (
	"time"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
)

// Block represents a sealed record in the chain. Blocks are handed out by
// value so a caller can never change what is held in storage.
type Block struct {
	Height        uint64 `json:"height"`              // Position of the block in the chain, starting at 0.
	TimeStamp     uint64 `json:"timestamp"`           // Unix seconds when the block was constructed.
	PrevBlockHash string `json:"previous_block_hash"` // Hash of the previous block, ZeroHash for genesis.
	Body          string `json:"body"`                // Hex encoded payload.
	Hash          string `json:"hash"`                // Hash of all the fields above.
}

// blockFields represents the part of a block that is covered by the hash.
type blockFields struct {
	Height        uint64 `json:"height"`
	TimeStamp     uint64 `json:"timestamp"`
	PrevBlockHash string `json:"previous_block_hash"`
	Body          string `json:"body"`
}

// Seal constructs a block with all fields fixed and computes its hash.
func Seal(height uint64, timeStamp uint64, prevBlockHash string, body string) Block {
	b := Block{
		Height:        height,
		TimeStamp:     timeStamp,
		PrevBlockHash: prevBlockHash,
		Body:          body,
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash calculates the hash over the block fields, leaving out the
// stored hash itself. The stored hash is never updated by this call.
func (b Block) ComputeHash() string {
	return signature.Hash(blockFields{
		Height:        b.Height,
		TimeStamp:     b.TimeStamp,
		PrevBlockHash: b.PrevBlockHash,
		Body:          b.Body,
	})
}

// IsIntact reports whether the stored hash still matches the block content.
func (b Block) IsIntact() bool {
	return b.ComputeHash() == b.Hash
}

// Time returns the block timestamp as a time value.
func (b Block) Time() time.Time {
	return time.Unix(int64(b.TimeStamp), 0).UTC()
}
