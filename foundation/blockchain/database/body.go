package database

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// genesisData is the payload sealed into the genesis block. It does not
// parse as a star record so it never shows up in owner queries.
var genesisData = struct {
	Data string `json:"data"`
}{
	Data: "Genesis Block",
}

// Star represents the star information submitted by a wallet owner.
type Star struct {
	RA    *float64 `json:"ra" validate:"required"`  // Right ascension.
	Dec   *float64 `json:"dec" validate:"required"` // Declination.
	Mag   *float64 `json:"mag,omitempty"`           // Magnitude.
	Cen   string   `json:"cen,omitempty"`           // Constellation.
	Story string   `json:"story"`                   // Free text, hex encoded inside a block.
}

// StarRecord is the logical payload of a star block.
type StarRecord struct {
	Owner string `json:"owner"`
	Star  Star   `json:"star"`
}

// =============================================================================

// EncodeBody marshals the value and hex encodes it for use as a block body.
func EncodeBody(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(data), nil
}

// DecodeBody reverses the hex encoding of the block body.
func DecodeBody(block Block) ([]byte, error) {
	data, err := hexutil.Decode(block.Body)
	if err != nil {
		return nil, fmt.Errorf("decode body blk[%d]: %w", block.Height, err)
	}

	return data, nil
}

// EncodeStory hex encodes the story text.
func EncodeStory(story string) string {
	return hexutil.Encode([]byte(story))
}

// DecodeStory returns the story text from its hex encoding.
func DecodeStory(story string) (string, error) {
	data, err := hexutil.Decode(story)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// StarBody validates the star and returns the block body that records it
// for the specified owner.
func StarBody(owner string, star Star) (string, error) {
	if star.RA == nil || star.Dec == nil {
		return "", ErrInvalidPayload
	}

	star.Story = EncodeStory(star.Story)

	return EncodeBody(StarRecord{Owner: owner, Star: star})
}

// ParseStar decodes the block body into a star record with its story
// decoded. It returns false if the body does not hold a star record.
func ParseStar(block Block) (StarRecord, bool) {
	data, err := DecodeBody(block)
	if err != nil {
		return StarRecord{}, false
	}

	var rec StarRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return StarRecord{}, false
	}

	if rec.Owner == "" || rec.Star.RA == nil || rec.Star.Dec == nil {
		return StarRecord{}, false
	}

	story, err := DecodeStory(rec.Star.Story)
	if err != nil {
		return StarRecord{}, false
	}
	rec.Star.Story = story

	return rec, true
}

// OwnedBy reports whether the record belongs to the address.
func (rec StarRecord) OwnedBy(address string) bool {
	return signature.SameAddress(rec.Owner, address)
}
