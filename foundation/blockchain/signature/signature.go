// Package signature provides helper functions for handling the blockchain
// hashing and wallet message signature needs.
package signature

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Set of errors returned when verifying a wallet message signature.
var (
	ErrUnsupportedAddress = errors.New("unsupported address format")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrAddressMismatch    = errors.New("signature does not belong to address")
)

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// VerifyMessage checks that the signature was produced over the message by
// the private key behind the specified address. The signing scheme is chosen
// by the format of the address: Ethereum hex addresses use the personal
// message scheme and Bitcoin base58 addresses use the signed message scheme.
func VerifyMessage(message string, address string, sig string) error {
	switch {
	case common.IsHexAddress(address):
		return VerifyEthereumMessage(message, address, sig)

	case IsBitcoinAddress(address):
		return VerifyBitcoinMessage(message, address, sig)
	}

	return fmt.Errorf("address %q: %w", address, ErrUnsupportedAddress)
}

// SameAddress reports whether the two strings name the same wallet address.
// Hex addresses are compared by value so checksum casing does not matter.
func SameAddress(a string, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}
	return a == b
}
