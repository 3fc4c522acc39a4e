package crypto

import (
	"bytes"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, AddressLength)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := NewAddress(raw)
	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != addr {
		t.Fatalf("round trip mismatch: %s != %s", decoded, addr)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("unexpected bytes: %x", decoded.Bytes())
	}
}

func TestDecodeAddressRejectsWrongLength(t *testing.T) {
	if _, err := DecodeAddress("abc"); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := DecodeAddress("not-base58!!"); err == nil {
		t.Fatalf("expected error for invalid alphabet")
	}
}

func TestVaultKeyDeterministic(t *testing.T) {
	mint := NewAddress(bytes.Repeat([]byte{0x7}, AddressLength))
	first := VaultKey(mint)
	second := VaultKey(mint)
	if first != second {
		t.Fatalf("vault key not deterministic")
	}
	other := NewAddress(bytes.Repeat([]byte{0x8}, AddressLength))
	if VaultKey(other) == first {
		t.Fatalf("distinct mints produced the same vault key")
	}
}

func TestDeriveAuthorityScopedToVault(t *testing.T) {
	mint := NewAddress(bytes.Repeat([]byte{0x1}, AddressLength))
	vault := VaultKey(mint)
	auth := DeriveAuthority(vault)
	if auth.Vault() != vault {
		t.Fatalf("authority bound to wrong vault")
	}
	if !auth.Covers(auth.Address()) {
		t.Fatalf("authority must cover its own derived address")
	}
	if auth.Covers(mint) {
		t.Fatalf("authority must not cover unrelated owners")
	}
	again := DeriveAuthority(vault)
	if again.Address() != auth.Address() {
		t.Fatalf("authority derivation not deterministic")
	}
}

func TestPositionKeyDistinctPerOwner(t *testing.T) {
	vault := NewAddress(bytes.Repeat([]byte{0x2}, AddressLength))
	a := NewAddress(bytes.Repeat([]byte{0x3}, AddressLength))
	b := NewAddress(bytes.Repeat([]byte{0x4}, AddressLength))
	if PositionKey(vault, a) == PositionKey(vault, b) {
		t.Fatalf("positions for distinct owners collided")
	}
}
