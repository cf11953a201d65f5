package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "storefront/internal/errors"
	"storefront/internal/kv"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps server-side sessions in the key/value store. Clients only hold a
// cookie value of the form "<session id>.<hmac>", signed with the session secret.
type SessionStore struct {
	store  kv.Store
	secret []byte
	ttl    time.Duration
}

// NewSessionStore creates a session store signing cookies with secret.
func NewSessionStore(store kv.Store, secret string, ttl time.Duration) *SessionStore {
	return &SessionStore{store: store, secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of new sessions.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for p and returns the signed cookie value.
func (s *SessionStore) Create(ctx context.Context, p Principal) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	sid := uuid.NewString()
	if err := s.store.Set(ctx, sessionKeyPrefix+sid, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sid + "." + s.sign(sid), nil
}

// Lookup verifies a cookie value and loads its session.
func (s *SessionStore) Lookup(ctx context.Context, cookieValue string) (*Principal, error) {
	sid, ok := s.verify(cookieValue)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	data, err := s.store.Get(ctx, sessionKeyPrefix+sid)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", apperrors.ErrUnauthenticated, err)
	}
	if data == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: corrupt session", apperrors.ErrUnauthenticated)
	}
	return &p, nil
}

// Destroy removes the session behind a cookie value. Unknown or forged values are ignored.
func (s *SessionStore) Destroy(ctx context.Context, cookieValue string) error {
	sid, ok := s.verify(cookieValue)
	if !ok {
		return nil
	}
	return s.store.Delete(ctx, sessionKeyPrefix+sid)
}

func (s *SessionStore) sign(sid string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(sid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *SessionStore) verify(cookieValue string) (string, bool) {
	sid, sig, found := strings.Cut(cookieValue, ".")
	if !found || sid == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(sid))) {
		return "", false
	}
	return sid, true
}
