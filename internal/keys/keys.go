package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"CoinFlip/internal/model"
)

// StoredKey is a keypair as written to disk.
type StoredKey struct {
	Name       string        `json:"name"`
	Address    model.Address `json:"address"`
	PrivKeyHex string        `json:"privkey_hex"`
	CreatedAt  string        `json:"created_at"`
}

func EnsureKey(path, name string) (StoredKey, bool, error) {
	if key, err := Load(path); err == nil {
		return key, false, nil
	}
	key, err := Generate(name)
	if err != nil {
		return StoredKey{}, false, err
	}
	if err := Save(path, key); err != nil {
		return StoredKey{}, false, err
	}
	return key, true, nil
}

func Generate(name string) (StoredKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return StoredKey{}, fmt.Errorf("generate key: %w", err)
	}
	return StoredKey{
		Name:       name,
		Address:    AddressOf(priv.PubKey()),
		PrivKeyHex: hex.EncodeToString(priv.Serialize()),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func Save(path string, key StoredKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	bz, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bz, 0o600)
}

func Load(path string) (StoredKey, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return StoredKey{}, err
	}
	var key StoredKey
	if err := json.Unmarshal(bz, &key); err != nil {
		return StoredKey{}, err
	}
	if key.Address == "" {
		return StoredKey{}, fmt.Errorf("invalid key file: missing address")
	}
	priv, err := key.privateKey()
	if err != nil {
		return StoredKey{}, err
	}
	if AddressOf(priv.PubKey()) != key.Address {
		return StoredKey{}, fmt.Errorf("invalid key file: address does not match private key")
	}
	return key, nil
}

// Path returns the key file location for name under dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Sign returns a DER signature over sha256(msg).
func (k StoredKey) Sign(msg []byte) ([]byte, error) {
	priv, err := k.privateKey()
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(msg)
	return ecdsa.Sign(priv, digest[:]).Serialize(), nil
}

func (k StoredKey) privateKey() (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(k.PrivKeyHex)
	if err != nil || len(b) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf("invalid key file: bad private key")
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// Verify reports whether sig is a valid signature by addr over sha256(msg).
func Verify(addr model.Address, msg, sig []byte) bool {
	pub, err := ParseAddress(string(addr))
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], pub)
}

// ParseAddress decodes a hex compressed public key.
func ParseAddress(s string) (*secp256k1.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if len(b) != secp256k1.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("parse address: want %d bytes, got %d", secp256k1.PubKeyBytesLenCompressed, len(b))
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	return pub, nil
}

// AddressOf returns the ledger address for a public key.
func AddressOf(pub *secp256k1.PublicKey) model.Address {
	return model.Address(hex.EncodeToString(pub.SerializeCompressed()))
}
