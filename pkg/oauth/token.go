// Package oauth holds OAuth 1.0a credentials for Flickr and runs the
// three-legged authorization flow.
//
// Signature computation is delegated to github.com/garyburd/go-oauth. This
// package adds token persistence (TokenStore) and Flickr's endpoint layout.
package oauth

import (
	"context"
	"errors"
	"sync"
)

// DefaultService is the TokenStore slot used for Flickr access tokens.
const DefaultService = "flickr"

var (
	// ErrNoToken is returned by a TokenStore that holds nothing for a service.
	ErrNoToken = errors.New("no token stored")

	// ErrTokenRequest wraps failures of the temporary-credential and
	// access-token requests.
	ErrTokenRequest = errors.New("oauth token request failed")

	// ErrInvalidPerm is returned for a permission other than read, write or delete.
	ErrInvalidPerm = errors.New("invalid oauth permission")
)

// Token is an OAuth token/secret pair. The zero Token is the anonymous token.
type Token struct {
	Token  string            `json:"token"`
	Secret string            `json:"secret"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// IsAnonymous reports whether t carries no credentials.
func (t Token) IsAnonymous() bool {
	return t.Token == "" && t.Secret == ""
}

// TokenStore persists one token per service. Writes are last-writer-wins.
type TokenStore interface {
	// Token returns the stored token, or ErrNoToken.
	Token(ctx context.Context, service string) (Token, error)

	// StoreToken replaces the token for service.
	StoreToken(ctx context.Context, service string, token Token) error
}

// MemoryTokenStore keeps tokens in process.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewMemoryTokenStore creates an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]Token)}
}

// StaticTokenStore returns a memory store preloaded with token for DefaultService.
func StaticTokenStore(token, secret string) *MemoryTokenStore {
	s := NewMemoryTokenStore()
	if token != "" || secret != "" {
		s.tokens[DefaultService] = Token{Token: token, Secret: secret}
	}
	return s
}

func (s *MemoryTokenStore) Token(_ context.Context, service string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[service]
	if !ok {
		return Token{}, ErrNoToken
	}
	return cloneToken(t), nil
}

func (s *MemoryTokenStore) StoreToken(_ context.Context, service string, token Token) error {
	s.mu.Lock()
	s.tokens[service] = cloneToken(token)
	s.mu.Unlock()
	return nil
}

func cloneToken(t Token) Token {
	if t.Extra == nil {
		return t
	}
	extra := make(map[string]string, len(t.Extra))
	for k, v := range t.Extra {
		extra[k] = v
	}
	t.Extra = extra
	return t
}
