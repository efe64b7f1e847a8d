package auth

import (
	"sync"
	"time"
)

// Entries without a known expiry are kept this long before eviction.
const revocationCeiling = 30 * 24 * time.Hour

// RevocationLedger remembers revoked access tokens until they would have
// expired anyway. It is process-local and best-effort: entries do not
// survive a restart and are not shared across instances.
type RevocationLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationLedger() *RevocationLedger {
	return &RevocationLedger{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the ledger's time source. Test hook.
func (l *RevocationLedger) WithClock(now func() time.Time) *RevocationLedger {
	l.now = now
	return l
}

// Revoke marks a token unusable until expiresAt. A zero expiresAt falls
// back to a generous ceiling; the caller normally has the token's own
// expiry claim available.
func (l *RevocationLedger) Revoke(token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	if expiresAt.IsZero() {
		expiresAt = l.now().Add(revocationCeiling)
	}
	l.mu.Lock()
	l.revoked[token] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether the token is on the ledger. Entries past their
// expiry are dropped on lookup; there is no background sweep.
func (l *RevocationLedger) IsRevoked(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiresAt, ok := l.revoked[token]
	if !ok {
		return false
	}
	if expiresAt.Before(l.now()) {
		delete(l.revoked, token)
		return false
	}
	return true
}
