package database

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DiscrepancyKind identifies the type of integrity violation found.
type DiscrepancyKind int

// Set of integrity violations reported by ValidateChain.
const (
	Tampered DiscrepancyKind = iota + 1
	BrokenLink
)

// String implements the fmt.Stringer interface.
func (k DiscrepancyKind) String() string {
	switch k {
	case Tampered:
		return "tampered"
	case BrokenLink:
		return "broken_link"
	}
	return "unknown"
}

// MarshalText implements the encoding.TextMarshaler interface.
func (k DiscrepancyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (k *DiscrepancyKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tampered":
		*k = Tampered
	case "broken_link":
		*k = BrokenLink
	default:
		return fmt.Errorf("unknown discrepancy kind %q", text)
	}
	return nil
}

// Discrepancy describes an integrity violation found at a given height.
type Discrepancy struct {
	Height uint64          `json:"height"`
	Kind   DiscrepancyKind `json:"kind"`
}

// String implements the fmt.Stringer interface.
func (d Discrepancy) String() string {
	switch d.Kind {
	case Tampered:
		return fmt.Sprintf("Error - Block Height: %d - Has been Tampered.", d.Height)
	case BrokenLink:
		return fmt.Sprintf("Error - Block Height: %d - Previous Hash don't match.", d.Height)
	}
	return fmt.Sprintf("Error - Block Height: %d - Unknown discrepancy.", d.Height)
}

// =============================================================================

// ValidateBlock recomputes the hash of the block at the specified height and
// reports whether it matches the stored hash. A missing height is an error.
func (db *Database) ValidateBlock(height uint64) (bool, error) {
	block, err := db.BlockByHeight(height)
	if err != nil {
		return false, err
	}

	return block.IsIntact(), nil
}

// ValidateChain checks every block's hash and every link to the previous
// block. All blocks are checked and every discrepancy is reported in block
// order, the tamper check ahead of the link check for the same height.
// An empty result means the chain is consistent.
func (db *Database) ValidateChain() ([]Discrepancy, error) {
	blocks, err := db.Copy()
	if err != nil {
		return nil, err
	}

	// Sealed blocks never change, so the hashes can be recomputed in
	// parallel. Each goroutine writes to its own slot.
	intact := make([]bool, len(blocks))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, block := range blocks {
		g.Go(func() error {
			intact[i] = block.IsIntact()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	discrepancies := []Discrepancy{}
	for i, block := range blocks {
		height := uint64(i)

		if !intact[i] {
			discrepancies = append(discrepancies, Discrepancy{Height: height, Kind: Tampered})
		}

		if i > 0 && block.PrevBlockHash != blocks[i-1].Hash {
			discrepancies = append(discrepancies, Discrepancy{Height: height, Kind: BrokenLink})
		}
	}

	db.evHandler("database: ValidateChain: blocks[%d]: discrepancies[%d]", len(blocks), len(discrepancies))

	return discrepancies, nil
}
