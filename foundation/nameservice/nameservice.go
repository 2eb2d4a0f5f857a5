// Package nameservice reads a folder of wallet key files and creates a name
// service lookup for the star owners.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of wallet addresses for name lookup.
type NameService struct {
	addresses map[string]string
}

// New constructs a name service with the wallets found in the root folder.
// The name of each wallet is the name of its key file without the extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]string),
	}

	// A node without a wallet folder serves plain addresses.
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		address := signature.EthereumAddress(privateKey.PublicKey)
		ns.addresses[address] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address. The address itself is
// returned when there is no name on record.
func (ns *NameService) Lookup(address string) string {
	key := address
	if common.IsHexAddress(address) {
		key = common.HexToAddress(address).Hex()
	}

	name, exists := ns.addresses[key]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
