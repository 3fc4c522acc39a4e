package crypto

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLength is the raw byte length of every account, mint and vault key.
const AddressLength = 32

// Address identifies an account, mint or derived record on the ledger. The
// canonical text form is base58 without a checksum, matching the key format of
// the custody chain the service settles against.
type Address [AddressLength]byte

// NewAddress copies the supplied bytes into an Address. It panics when the
// input is not exactly 32 bytes; callers decoding untrusted input should use
// DecodeAddress instead.
func NewAddress(b []byte) Address {
	if len(b) != AddressLength {
		panic("address must be 32 bytes long")
	}
	var addr Address
	copy(addr[:], b)
	return addr
}

// DecodeAddress parses the base58 text form of an address.
func DecodeAddress(s string) (Address, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid base58 string: %w", err)
	}
	if len(decoded) != AddressLength {
		return Address{}, fmt.Errorf("address must be %d bytes (got %d)", AddressLength, len(decoded))
	}
	return NewAddress(decoded), nil
}

// MustDecodeAddress parses a known-good address literal and panics on failure.
// Reserved for package-level constants.
func MustDecodeAddress(s string) Address {
	addr, err := DecodeAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

var (
	vaultSeed          = []byte("vault")
	vaultAuthoritySeed = []byte("vault_authority")
	positionSeed       = []byte("user_position")
)

func deriveAddress(seeds ...[]byte) Address {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	return NewAddress(h.Sum(nil))
}

// VaultKey derives the deterministic record address for the vault custodying
// the supplied mint.
func VaultKey(mint Address) Address {
	return deriveAddress(vaultSeed, mint[:])
}

// PositionKey derives the record address for one depositor's position within a
// vault.
func PositionKey(vault, owner Address) Address {
	return deriveAddress(positionSeed, vault[:], owner[:])
}

// Authority is a capability authorizing outbound transfers from exactly one
// vault's custody account. It is constructed at vault creation and cannot be
// rebuilt from vault data by callers outside this package.
type Authority struct {
	vault   Address
	address Address
}

// DeriveAuthority builds the signing authority scoped to the supplied vault
// key. The derived address owns that vault's custody account.
func DeriveAuthority(vaultKey Address) Authority {
	return Authority{
		vault:   vaultKey,
		address: deriveAddress(vaultAuthoritySeed, vaultKey[:]),
	}
}

// Address returns the derived identity that holds custody for the bound vault.
func (a Authority) Address() Address {
	return a.address
}

// Vault returns the vault key this authority is bound to.
func (a Authority) Vault() Address {
	return a.vault
}

// Covers reports whether the authority is entitled to move funds out of an
// account owned by the supplied address.
func (a Authority) Covers(owner Address) bool {
	return bytes.Equal(a.address[:], owner[:])
}
