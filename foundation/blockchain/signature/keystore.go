package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
)

// Save writes kp's private key to path as hex text, matching the flat
// single-key-per-file layout a wallet or node config points at by path.
func Save(path string, kp KeyPair) error {
	encoded := hex.EncodeToString(kp.PrivateKey)
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("signature: save %s: %w", path, err)
	}
	return nil
}

// Load reads the hex-encoded private key at path and reconstructs the full
// key pair, deriving the public key and address from it.
func Load(path string) (KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: load %s: %w", path, err)
	}

	decoded, err := hex.DecodeString(string(raw))
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: load %s: decode: %w", path, err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return KeyPair{}, fmt.Errorf("signature: load %s: want %d key bytes, got %d", path, ed25519.PrivateKeySize, len(decoded))
	}

	priv := ed25519.PrivateKey(decoded)
	pub := priv.Public().(ed25519.PublicKey)

	return KeyPair{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    AddressOf(pub),
	}, nil
}
