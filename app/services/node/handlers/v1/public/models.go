package public

import (
	"github.com/ardanlabs/starchain/foundation/blockchain/database"
)

type challengeRequest struct {
	Address string `json:"address" validate:"required"`
}

type challenge struct {
	Address       string `json:"address"`
	Message       string `json:"message"`
	WindowSeconds int64  `json:"window_seconds"`
}

type submitRequest struct {
	Address   string        `json:"address" validate:"required"`
	Message   string        `json:"message" validate:"required"`
	Signature string        `json:"signature" validate:"required"`
	Star      database.Star `json:"star"`
}

type star struct {
	Owner     string        `json:"owner"`
	OwnerName string        `json:"owner_name"`
	Star      database.Star `json:"star"`
}

type blockValidation struct {
	Height uint64 `json:"height"`
	Valid  bool   `json:"valid"`
}

type chainValidation struct {
	Valid         bool                   `json:"valid"`
	Errors        []string               `json:"errors"`
	Discrepancies []database.Discrepancy `json:"discrepancies"`
}

type status struct {
	Height          int    `json:"height"`
	LatestBlockHash string `json:"latest_block_hash"`
	WindowSeconds   int64  `json:"window_seconds"`
}
