package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevocationUnknownToken(t *testing.T) {
	l := NewRevocationLedger()
	assert.False(t, l.IsRevoked("never-seen"))
}

func TestRevocationIdempotent(t *testing.T) {
	l := NewRevocationLedger()
	exp := time.Now().Add(time.Hour)

	l.Revoke("tok", exp)
	assert.True(t, l.IsRevoked("tok"))

	l.Revoke("tok", exp)
	assert.True(t, l.IsRevoked("tok"))
}

func TestRevocationLazyEviction(t *testing.T) {
	now := time.Now().UTC()
	l := NewRevocationLedger().WithClock(func() time.Time { return now })

	l.Revoke("tok", now.Add(time.Minute))
	assert.True(t, l.IsRevoked("tok"))

	now = now.Add(2 * time.Minute)
	assert.False(t, l.IsRevoked("tok"))
	// Entry was evicted, not just masked.
	l.mu.Lock()
	_, present := l.revoked["tok"]
	l.mu.Unlock()
	assert.False(t, present)
}

func TestRevocationZeroExpiryCeiling(t *testing.T) {
	now := time.Now().UTC()
	l := NewRevocationLedger().WithClock(func() time.Time { return now })

	l.Revoke("tok", time.Time{})
	assert.True(t, l.IsRevoked("tok"))

	now = now.Add(29 * 24 * time.Hour)
	assert.True(t, l.IsRevoked("tok"))

	now = now.Add(2 * 24 * time.Hour)
	assert.False(t, l.IsRevoked("tok"))
}

func TestRevocationIgnoresEmptyToken(t *testing.T) {
	l := NewRevocationLedger()
	l.Revoke("", time.Now().Add(time.Hour))
	assert.False(t, l.IsRevoked(""))
}

func TestRevocationConcurrentAccess(t *testing.T) {
	l := NewRevocationLedger()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok := fmt.Sprintf("tok-%d-%d", n, j)
				l.Revoke(tok, exp)
				assert.True(t, l.IsRevoked(tok))
			}
		}(i)
	}
	wg.Wait()
}
