package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the address format requires RIPEMD-160
)

// AddressLength is the fixed length of an encoded address.
const AddressLength = 34

// NewMnemonic generates a fresh 12-word BIP-39 mnemonic used as a wallet
// seed passphrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// KeyFromPassphrase derives the secp256k1 private key from a seed
// passphrase. The key is the SHA-256 of the passphrase bytes.
// passphrase must be []byte for security (caller should zero it after use)
func KeyFromPassphrase(passphrase []byte) *secp256k1.PrivateKey {
	h := sha256.Sum256(passphrase)
	defer clear(h[:])
	return secp256k1.PrivKeyFromBytes(h[:])
}

// PublicKeyFromPassphrase returns the 33-byte compressed public key for a
// seed passphrase.
func PublicKeyFromPassphrase(passphrase []byte) []byte {
	priv := KeyFromPassphrase(passphrase)
	defer priv.Zero()
	return priv.PubKey().SerializeCompressed()
}

// AddressFromPublicKey derives the network address from a compressed public
// key and the network's address-version byte: base58check(version ‖
// RIPEMD160(publicKey)). The first character of the result encodes the
// network.
func AddressFromPublicKey(publicKey []byte, version byte) (string, error) {
	if len(publicKey) != 33 {
		return "", fmt.Errorf("invalid public key length: expected 33 bytes, got %d", len(publicKey))
	}
	h := ripemd160.New()
	h.Write(publicKey)
	payload := append([]byte{version}, h.Sum(nil)...)
	return Base58CheckEncode(payload), nil
}

// AddressBytes decodes an address into its 21-byte (version ‖ hash) form.
func AddressBytes(address string) ([]byte, error) {
	b, err := Base58CheckDecode(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if len(b) != 21 {
		return nil, fmt.Errorf("invalid address %q: decoded to %d bytes", address, len(b))
	}
	return b, nil
}

// Base58CheckEncode encodes b with a 4-byte double-SHA256 checksum.
func Base58CheckEncode(b []byte) string {
	sum := checksum(b)
	return base58.Encode(append(b, sum...))
}

// Base58CheckDecode decodes a base58check string and verifies its checksum.
func Base58CheckDecode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 5 {
		return nil, errors.New("base58check string too short")
	}
	payload, sum := b[:len(b)-4], b[len(b)-4:]
	if !bytes.Equal(sum, checksum(payload)) {
		return nil, errors.New("base58check checksum mismatch")
	}
	return payload, nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
