package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SessionCache reuses the last opened session while consecutive calls
// act as the same organizer, and reopens when the identity changes.
// Purely opportunistic: a stale handle is simply replaced, it never
// serves the wrong principal.
type SessionCache struct {
	provider Provider

	mu        sync.Mutex
	principal string
	session   Session
}

func NewSessionCache(provider Provider) *SessionCache {
	return &SessionCache{provider: provider}
}

func (c *SessionCache) ForPrincipal(ctx context.Context, principal string) (Session, error) {
	normalized := strings.ToLower(principal)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.principal == normalized {
		return c.session, nil
	}

	session, err := c.provider.OpenSession(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("provider.OpenSession: %w", err)
	}

	c.principal = normalized
	c.session = session
	return session, nil
}

// Invalidate drops the cached session so the next call reopens.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principal = ""
	c.session = nil
}
