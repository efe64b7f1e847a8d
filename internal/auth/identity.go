package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// IdentityCodec protects stored identifiers two ways: AES-GCM for
// confidentiality, and a deterministic HMAC of the normalized value as an
// equality index. The index is what makes O(1) lookup and a store-level
// unique constraint possible without ever persisting the plaintext.
type IdentityCodec struct {
	aead   cipher.AEAD
	macKey []byte
}

func NewIdentityCodec(key []byte) (*IdentityCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("identity key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("identity cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("identity gcm: %w", err)
	}
	mac := sha256.Sum256(append(append([]byte{}, key...), []byte("identity-index")...))
	return &IdentityCodec{aead: aead, macKey: mac[:]}, nil
}

// DeriveIdentityKey stretches a configured secret into a 32-byte key for
// deployments that do not set an explicit encryption key.
func DeriveIdentityKey(secret string) ([]byte, error) {
	key, err := scrypt.Key([]byte(secret), []byte("inkpress-identity"), 16384, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("derive identity key: %w", err)
	}
	return key, nil
}

// NormalizeIdentifier trims and lower-cases an identifier so that
// case/whitespace variants resolve to the same principal.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Encrypt seals the plaintext with a fresh nonce, returning hex(nonce|ct).
func (c *IdentityCodec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("identity nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func (c *IdentityCodec) Decrypt(encoded string) (string, error) {
	sealed, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("identity decode: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(sealed) < ns {
		return "", errors.New("identity ciphertext too short")
	}
	plaintext, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("identity open: %w", err)
	}
	return string(plaintext), nil
}

// Index returns the deterministic lookup key for a normalized identifier.
func (c *IdentityCodec) Index(normalized string) string {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}
