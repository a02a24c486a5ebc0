// Package session carries one-shot flash messages between the data tier and
// the presentation tier. Both tiers share the same Redis, so an outcome
// written by one is readable by the other on the next page load.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName identifies the logical caller across both tiers.
	CookieName = "ab3_session"

	flashTTL = 30 * time.Minute
)

// Flash is a write outcome held for the next page view. Message and Error are
// mutually exclusive.
type Flash struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Store persists flashes keyed by session id.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func flashKey(sid string) string {
	return "ab3:session:" + sid + ":flash"
}

// Put stores the flash for the session, replacing any pending one.
func (s *Store) Put(ctx context.Context, sid string, f Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode flash: %w", err)
	}
	if err := s.kv.Set(ctx, flashKey(sid), string(data), flashTTL); err != nil {
		return fmt.Errorf("failed to store flash: %w", err)
	}
	return nil
}

// Pop reads and clears the pending flash. A miss returns a zero Flash.
func (s *Store) Pop(ctx context.Context, sid string) (Flash, error) {
	data, err := s.kv.Get(ctx, flashKey(sid))
	if err != nil {
		if err == ErrMiss {
			return Flash{}, nil
		}
		return Flash{}, fmt.Errorf("failed to read flash: %w", err)
	}
	_ = s.kv.Del(ctx, flashKey(sid))
	var f Flash
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return Flash{}, fmt.Errorf("failed to decode flash: %w", err)
	}
	return f, nil
}

// SessionID returns the caller's session id, minting a new cookie when the
// request has none.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})
	return sid
}
