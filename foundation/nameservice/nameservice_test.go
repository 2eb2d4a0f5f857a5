package nameservice_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/starchain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

func Test_Lookup(t *testing.T) {
	root := t.TempDir()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(root, "kennedy.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key file: %s", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0600); err != nil {
		t.Fatalf("Should be able to write a non key file: %s", err)
	}

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	if name := ns.Lookup(from); name != "kennedy" {
		t.Fatalf("Should resolve the address to the file name, got %q.", name)
	}

	if name := ns.Lookup(strings.ToLower(from)); name != "kennedy" {
		t.Fatalf("Should resolve a lower case address, got %q.", name)
	}

	const unknown = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"
	if name := ns.Lookup(unknown); name != unknown {
		t.Fatalf("Should return an unknown address as is, got %q.", name)
	}

	if len(ns.Copy()) != 1 {
		t.Fatalf("Should only load the key files: %v", ns.Copy())
	}
}

func Test_MissingFolder(t *testing.T) {
	ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Should be able to construct the name service without a folder: %s", err)
	}

	if name := ns.Lookup(from); name != from {
		t.Fatalf("Should return the address as is, got %q.", name)
	}
}
