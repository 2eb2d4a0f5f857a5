package cmd

import (
	"fmt"

	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
)

// wallet is the loaded key with the address and signing scheme selected
// by the bitcoin flag.
type wallet struct {
	address string
	sign    func(message string) (string, error)
}

func loadWallet() (wallet, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return wallet{}, fmt.Errorf("load key: %w", err)
	}

	if !bitcoin {
		w := wallet{
			address: signature.EthereumAddress(privateKey.PublicKey),
			sign: func(message string) (string, error) {
				return signature.SignEthereumMessage(message, privateKey)
			},
		}
		return w, nil
	}

	btcKey, _ := btcec.PrivKeyFromBytes(btcec.S256(), crypto.FromECDSA(privateKey))

	address, err := signature.BitcoinAddress(btcKey.PubKey(), true, &chaincfg.MainNetParams)
	if err != nil {
		return wallet{}, fmt.Errorf("bitcoin address: %w", err)
	}

	w := wallet{
		address: address,
		sign: func(message string) (string, error) {
			return signature.SignBitcoinMessage(message, btcKey, true)
		},
	}

	return w, nil
}
