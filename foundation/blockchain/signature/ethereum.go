package signature

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ethereumID is the value wallets add to the recovery id when producing a
// personal message signature.
const ethereumID = 27

// EthereumAddress returns the checksummed hex address for the public key.
func EthereumAddress(publicKey ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(publicKey).Hex()
}

// SignEthereumMessage produces a personal message signature in the
// [R|S|V] hex format used by Ethereum wallets.
func SignEthereumMessage(message string, privateKey *ecdsa.PrivateKey) (string, error) {

	// Sign the stamped hash of the message with the private key.
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), privateKey)
	if err != nil {
		return "", err
	}

	// Wallets hand out the recovery id with the Ethereum id applied.
	sig[crypto.RecoveryIDOffset] += ethereumID

	return hexutil.Encode(sig), nil
}

// VerifyEthereumMessage verifies a personal message signature was produced
// by the private key associated with the specified hex address.
func VerifyEthereumMessage(message string, address string, sigStr string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("address %q: %w", address, ErrUnsupportedAddress)
	}

	raw, err := hexutil.Decode(sigStr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if len(raw) != crypto.SignatureLength {
		return fmt.Errorf("%w: length %d, exp %d", ErrInvalidSignature, len(raw), crypto.SignatureLength)
	}

	// Work on a copy so the recovery id can be normalized back to 0 or 1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= ethereumID {
		sig[crypto.RecoveryIDOffset] -= ethereumID
	}

	v := sig[crypto.RecoveryIDOffset]
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return fmt.Errorf("%w: invalid signature values", ErrInvalidSignature)
	}

	// Capture the public key associated with this message and signature.
	publicKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if crypto.PubkeyToAddress(*publicKey) != common.HexToAddress(address) {
		return ErrAddressMismatch
	}

	return nil
}
