package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainnetVersion byte = 23 // addresses start with 'A'

func TestAddressFromPublicKey(t *testing.T) {
	for i := 0; i < 16; i++ {
		mnemonic, err := NewMnemonic()
		require.NoError(t, err)

		pub := PublicKeyFromPassphrase([]byte(mnemonic))
		require.Len(t, pub, 33)

		address, err := AddressFromPublicKey(pub, mainnetVersion)
		require.NoError(t, err)
		assert.Len(t, address, AddressLength)
		assert.Equal(t, byte('A'), address[0])

		decoded, err := AddressBytes(address)
		require.NoError(t, err)
		assert.Equal(t, mainnetVersion, decoded[0])
		assert.Len(t, decoded, 21)
	}
}

func TestAddressDerivationDeterministic(t *testing.T) {
	passphrase := []byte("lens order tumble rescue aspect timber")

	a, err := AddressFromPublicKey(PublicKeyFromPassphrase(passphrase), mainnetVersion)
	require.NoError(t, err)
	b, err := AddressFromPublicKey(PublicKeyFromPassphrase(passphrase), mainnetVersion)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAddressFromPublicKeyRejectsBadKey(t *testing.T) {
	_, err := AddressFromPublicKey([]byte{1, 2, 3}, mainnetVersion)
	assert.Error(t, err)
}

func TestBase58CheckDecodeRejectsBadChecksum(t *testing.T) {
	address, err := AddressFromPublicKey(PublicKeyFromPassphrase([]byte("seed")), mainnetVersion)
	require.NoError(t, err)

	// Flip the last character to corrupt the checksum.
	last := address[len(address)-1]
	replacement := byte('2')
	if last == replacement {
		replacement = '3'
	}
	corrupted := address[:len(address)-1] + string(replacement)

	_, err = Base58CheckDecode(corrupted)
	assert.Error(t, err)
}

func TestNewMnemonicIsUnique(t *testing.T) {
	a, err := NewMnemonic()
	require.NoError(t, err)
	b, err := NewMnemonic()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
