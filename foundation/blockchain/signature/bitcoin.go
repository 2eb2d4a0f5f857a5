package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
)

// bitcoinMagic is the prefix Bitcoin wallets hash in front of a message
// before signing it.
const bitcoinMagic = "Bitcoin Signed Message:\n"

// bitcoinNets are the networks whose pay-to-pubkey-hash addresses are
// accepted.
var bitcoinNets = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.RegressionNetParams,
	&chaincfg.SimNetParams,
}

// compactSignatureLength is the size of a recoverable compact signature.
const compactSignatureLength = 65

// IsBitcoinAddress reports whether the address is a base58 pay-to-pubkey-hash
// address for any of the known Bitcoin networks.
func IsBitcoinAddress(address string) bool {
	_, err := decodePubKeyHash(address)
	return err == nil
}

// BitcoinAddress returns the pay-to-pubkey-hash address for the public key
// on the specified network.
func BitcoinAddress(publicKey *btcec.PublicKey, compressed bool, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(serializePublicKey(publicKey, compressed)), params)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}

// SignBitcoinMessage produces a base64 compact signature over the message
// the same way Bitcoin Core and Electrum sign messages.
func SignBitcoinMessage(message string, privateKey *btcec.PrivateKey, compressed bool) (string, error) {
	hash, err := bitcoinMessageHash(message)
	if err != nil {
		return "", err
	}

	sig, err := btcec.SignCompact(btcec.S256(), privateKey, hash, compressed)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyBitcoinMessage verifies a base64 compact signature was produced by
// the private key associated with the specified address.
func VerifyBitcoinMessage(message string, address string, sigStr string) error {
	pubKeyHash, err := decodePubKeyHash(address)
	if err != nil {
		return fmt.Errorf("address %q: %w", address, err)
	}

	sig, err := base64.StdEncoding.DecodeString(sigStr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if len(sig) != compactSignatureLength {
		return fmt.Errorf("%w: length %d, exp %d", ErrInvalidSignature, len(sig), compactSignatureLength)
	}

	hash, err := bitcoinMessageHash(message)
	if err != nil {
		return err
	}

	// The compact format carries the recovery id and whether the signer
	// used a compressed public key.
	publicKey, compressed, err := btcec.RecoverCompact(btcec.S256(), sig, hash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if !bytes.Equal(btcutil.Hash160(serializePublicKey(publicKey, compressed)), pubKeyHash) {
		return ErrAddressMismatch
	}

	return nil
}

// =============================================================================

// decodePubKeyHash decodes the base58check address, makes sure it is a
// pay-to-pubkey-hash address for one of the known networks, and returns
// the hash of the public key.
func decodePubKeyHash(address string) ([]byte, error) {
	pubKeyHash, netID, err := base58.CheckDecode(address)
	if err != nil || len(pubKeyHash) != 20 {
		return nil, ErrUnsupportedAddress
	}

	for _, params := range bitcoinNets {
		if netID == params.PubKeyHashAddrID {
			return pubKeyHash, nil
		}
	}

	return nil, ErrUnsupportedAddress
}

// bitcoinMessageHash returns the double sha256 of the magic prefix and the
// message, each written as a variable length string.
func bitcoinMessageHash(message string) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarString(&buf, 0, bitcoinMagic); err != nil {
		return nil, err
	}
	if err := wire.WriteVarString(&buf, 0, message); err != nil {
		return nil, err
	}

	return chainhash.DoubleHashB(buf.Bytes()), nil
}

func serializePublicKey(publicKey *btcec.PublicKey, compressed bool) []byte {
	if compressed {
		return publicKey.SerializeCompressed()
	}
	return publicKey.SerializeUncompressed()
}
