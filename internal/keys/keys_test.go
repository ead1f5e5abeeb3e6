package keys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSignVerify(t *testing.T) {
	key, err := Generate("user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := []byte("place bet")
	sig, err := key.Sign(msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !Verify(key.Address, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(key.Address, []byte("other message"), sig) {
		t.Error("signature accepted for a different message")
	}

	other, err := Generate("other")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if Verify(other.Address, msg, sig) {
		t.Error("signature accepted for a different address")
	}
	if Verify(key.Address, msg, []byte{1, 2, 3}) {
		t.Error("garbage signature accepted")
	}
	if Verify("not-hex", msg, sig) {
		t.Error("bad address accepted")
	}
}

func TestEnsureKeyPersists(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), "keys"), "user")

	first, created, err := EnsureKey(path, "user")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created {
		t.Error("expected key to be created")
	}
	second, created, err := EnsureKey(path, "user")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if created {
		t.Error("expected existing key to be loaded")
	}
	if first.Address != second.Address {
		t.Errorf("address changed: %s -> %s", first.Address, second.Address)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadRejectsMismatchedAddress(t *testing.T) {
	key, err := Generate("user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other, err := Generate("other")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key.Address = other.Address

	path := filepath.Join(t.TempDir(), "user.json")
	if err := Save(path, key); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected mismatched key file to be rejected")
	}
}

func TestParseAddress(t *testing.T) {
	key, err := Generate("user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	pub, err := ParseAddress(string(key.Address))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if AddressOf(pub) != key.Address {
		t.Error("address did not round trip")
	}
	if _, err := ParseAddress("abcd"); err == nil {
		t.Error("expected short address to fail")
	}
}
