// Package tx builds and signs transfer transactions. Everything here is
// pure: no I/O, no shared state, safe to retry.
package tx

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/AlexZinkM/tip-wallet/internal/crypto"
)

// TypeTransfer is the wire type byte of a plain transfer.
const TypeTransfer byte = 0

// vendorFieldLength is the fixed serialized size of the memo field.
const vendorFieldLength = 64

// Epoch is the network's timestamp origin; transaction timestamps count
// seconds since this instant.
var Epoch = time.Date(2017, time.March, 21, 13, 0, 0, 0, time.UTC)

// Timestamp returns the network timestamp for a wall-clock instant.
func Timestamp(t time.Time) uint32 {
	d := t.UTC().Sub(Epoch)
	if d < 0 {
		return 0
	}
	return uint32(d / time.Second)
}

// Transaction is a signed transfer in its wire form.
type Transaction struct {
	ID              string `json:"id"`
	Type            byte   `json:"type"`
	Network         byte   `json:"network"`
	Timestamp       uint32 `json:"timestamp"`
	SenderPublicKey string `json:"senderPublicKey"`
	RecipientID     string `json:"recipientId"`
	Amount          uint64 `json:"amount"`
	Fee             uint64 `json:"fee"`
	VendorField     string `json:"vendorField,omitempty"`
	Signature       string `json:"signature"`
	SignSignature   string `json:"signSignature,omitempty"`
}

// TransferParams are the inputs to BuildTransfer. Amount and Fee are base
// units; Seed is the plaintext seed passphrase, which the caller zeroes
// after the call returns.
type TransferParams struct {
	Network          byte
	Amount           uint64
	Fee              uint64
	RecipientID      string
	VendorField      string
	Timestamp        uint32
	Seed             []byte
	SecondPassphrase []byte
}

// BuildTransfer constructs and signs a transfer. Signing uses RFC 6979
// deterministic ECDSA, so equal params produce a structurally equal
// transaction with the same id on every call.
func BuildTransfer(p TransferParams) (*Transaction, error) {
	if p.Amount == 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if len(p.VendorField) > vendorFieldLength {
		return nil, fmt.Errorf("vendor field exceeds %d bytes", vendorFieldLength)
	}
	recipient, err := crypto.AddressBytes(p.RecipientID)
	if err != nil {
		return nil, err
	}

	priv := crypto.KeyFromPassphrase(p.Seed)
	defer priv.Zero()

	t := &Transaction{
		Type:            TypeTransfer,
		Network:         p.Network,
		Timestamp:       p.Timestamp,
		SenderPublicKey: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
		RecipientID:     p.RecipientID,
		Amount:          p.Amount,
		Fee:             p.Fee,
		VendorField:     p.VendorField,
	}

	// Primary signature over the unsigned serialization.
	unsigned := t.serialize(recipient, false, false)
	t.Signature = signHex(unsigned, p.Seed)

	// Optional second signature over the primary-signed serialization.
	if len(p.SecondPassphrase) > 0 {
		signed := t.serialize(recipient, true, false)
		t.SignSignature = signHex(signed, p.SecondPassphrase)
	}

	full := t.serialize(recipient, true, true)
	id := sha256.Sum256(full)
	t.ID = hex.EncodeToString(id[:])

	return t, nil
}

// serialize produces the canonical byte form used for signing and for the
// transaction id.
func (t *Transaction) serialize(recipient []byte, withSignature, withSecond bool) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(t.Type)
	binary.Write(buf, binary.LittleEndian, t.Timestamp)

	pub, _ := hex.DecodeString(t.SenderPublicKey)
	buf.Write(pub)
	buf.Write(recipient)

	vendor := make([]byte, vendorFieldLength)
	copy(vendor, t.VendorField)
	buf.Write(vendor)

	binary.Write(buf, binary.LittleEndian, t.Amount)
	binary.Write(buf, binary.LittleEndian, t.Fee)

	if withSignature && t.Signature != "" {
		sig, _ := hex.DecodeString(t.Signature)
		buf.Write(sig)
	}
	if withSecond && t.SignSignature != "" {
		sig, _ := hex.DecodeString(t.SignSignature)
		buf.Write(sig)
	}
	return buf.Bytes()
}

// signHex signs sha256(data) with the key derived from passphrase and
// returns the DER signature as lowercase hex.
func signHex(data, passphrase []byte) string {
	priv := crypto.KeyFromPassphrase(passphrase)
	defer priv.Zero()

	hash := sha256.Sum256(data)
	sig := ecdsa.Sign(priv, hash[:])
	return hex.EncodeToString(sig.Serialize())
}
