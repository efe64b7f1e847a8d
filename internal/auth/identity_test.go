package auth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *IdentityCodec {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	codec, err := NewIdentityCodec(key)
	require.NoError(t, err)
	return codec
}

func TestIdentityCodecRoundTrip(t *testing.T) {
	codec := testCodec(t)

	encrypted, err := codec.Encrypt("alice@example.com")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "alice")

	plain, err := codec.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", plain)
}

func TestIdentityCodecFreshNonce(t *testing.T) {
	codec := testCodec(t)

	a, err := codec.Encrypt("same@example.com")
	require.NoError(t, err)
	b, err := codec.Encrypt("same@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIdentityCodecRejectsBadKey(t *testing.T) {
	_, err := NewIdentityCodec([]byte("short"))
	assert.Error(t, err)
}

func TestIdentityCodecRejectsGarbage(t *testing.T) {
	codec := testCodec(t)

	_, err := codec.Decrypt("not-hex")
	assert.Error(t, err)

	_, err = codec.Decrypt("abcd")
	assert.Error(t, err)
}

func TestIndexDeterministicAcrossVariants(t *testing.T) {
	codec := testCodec(t)

	base := codec.Index(NormalizeIdentifier("bob@x.com"))
	assert.Equal(t, base, codec.Index(NormalizeIdentifier("Bob@X.com")))
	assert.Equal(t, base, codec.Index(NormalizeIdentifier("  bob@x.com  ")))
	assert.NotEqual(t, base, codec.Index(NormalizeIdentifier("bobby@x.com")))
}

func TestIndexDependsOnKey(t *testing.T) {
	a := testCodec(t)
	b, err := NewIdentityCodec(bytes.Repeat([]byte{0x17}, 32))
	require.NoError(t, err)

	assert.NotEqual(t, a.Index("bob@x.com"), b.Index("bob@x.com"))
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "bob@x.com", NormalizeIdentifier("  Bob@X.Com "))
	assert.Equal(t, "", NormalizeIdentifier("   "))
}

func TestDeriveIdentityKey(t *testing.T) {
	key, err := DeriveIdentityKey("some-secret")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := DeriveIdentityKey("some-secret")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	other, err := DeriveIdentityKey("other-secret")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
