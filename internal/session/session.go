// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed HTTP sessions for staff and
// one-time flash messages for every visitor. Both are identified by
// secure random cookies and stored as JSON in Valkey with a TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the staff session cookie.
	CookieName = "hx_session"

	// FlashCookieName identifies a visitor's pending flash messages.
	FlashCookieName = "hx_flash"

	// DefaultTTL is how long a staff session lives in Valkey.
	DefaultTTL = 24 * time.Hour

	// FlashTTL is how long unread flash messages are kept.
	FlashTTL = 10 * time.Minute

	keyPrefix      = "session:"
	flashKeyPrefix = "flash:"

	// idLength is the byte length of random identifiers (64 hex chars).
	idLength = 32
)

// Data is the staff session payload.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	TwoFADone   bool      `json:"two_fa_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// Flash is a one-time message shown on the next page view. Values carries
// the submitted form input so a rejected form can be refilled.
type Flash struct {
	Type    string            `json:"type"` // success, error, warning, info
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
}

// Store manages sessions and flashes in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a store backed by the given Valkey client. secure sets
// the Secure attribute on cookies and should be true behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// ErrNoSession is returned by Update when the request carries no session
// cookie.
var ErrNoSession = errors.New("session: no cookie")

// Create stores data under a fresh random ID and sets the session cookie.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	data.CreatedAt = time.Now()
	if err := s.save(ctx, id, data); err != nil {
		return "", err
	}
	http.SetCookie(w, s.cookie(CookieName, id, int(s.ttl.Seconds())))
	return id, nil
}

// Get returns the session of the request, or nil when there is none or it
// has expired.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := sessionID(r)
	if !ok {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("session get: %w", err)
	}

	data := new(Data)
	if err := json.Unmarshal(payload, data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return data, nil
}

// Update overwrites the session payload. The TTL starts over.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id, ok := sessionID(r)
	if !ok {
		return ErrNoSession
	}
	return s.save(ctx, id, data)
}

// Destroy deletes the session from Valkey and expires the cookie. A request
// without a session is a no-op.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	http.SetCookie(w, s.cookie(CookieName, "", -1))
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// AddFlash queues a flash message for the visitor, creating the flash
// cookie when the request does not carry one.
func (s *Store) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error {
	id := ""
	if c, err := r.Cookie(FlashCookieName); err == nil && c.Value != "" {
		id = c.Value
	} else {
		if id, err = generateID(); err != nil {
			return fmt.Errorf("flash id: %w", err)
		}
		http.SetCookie(w, s.cookie(FlashCookieName, id, int(FlashTTL.Seconds())))
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}
	key := flashKeyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, FlashTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash store: %w", err)
	}
	return nil
}

// Flashes returns and clears the visitor's pending flash messages.
func (s *Store) Flashes(ctx context.Context, r *http.Request) ([]Flash, error) {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	key := flashKeyPrefix + c.Value

	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("flash get: %w", err)
	}

	var out []Flash
	for _, raw := range items.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *Store) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
