// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/google/uuid"

	xglog "github.com/ManuGH/confirmgate/internal/log"
	"github.com/ManuGH/confirmgate/internal/session"
)

const tokenKeyPrefix = "token:"

// tokens are base36 renderings of a SHA-256 digest: at most 50 characters.
var tokenPattern = regexp.MustCompile(`^[0-9a-z]{1,64}$`)

// Pending is the persisted record behind a token.
type Pending struct {
	Token     string    `json:"-"`
	Action    string    `json:"action"`
	Params    Params    `json:"params"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenStore issues single-use tokens and keeps their pending records in a session
// scoped store. Expiry is entirely the store's TTL.
type TokenStore struct {
	store session.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenStore creates a token store writing records with the given ttl.
func NewTokenStore(store session.Store, ttl time.Duration) *TokenStore {
	return &TokenStore{store: store, ttl: ttl, now: time.Now}
}

// generateToken derives a token from a random uuid, the action name, fresh random bytes
// and the clock, hashed and rendered in base36.
func generateToken(action string, now time.Time) (string, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}
	var nanos [8]byte
	binary.BigEndian.PutUint64(nanos[:], uint64(now.UnixNano()))

	h := sha256.New()
	h.Write([]byte(uuid.NewString()))
	h.Write([]byte("confirm" + action))
	h.Write(salt[:])
	h.Write(nanos[:])
	return new(big.Int).SetBytes(h.Sum(nil)).Text(36), nil
}

// Issue creates a token for action and persists the pending record under it.
func (s *TokenStore) Issue(ctx context.Context, action string, params Params) (string, error) {
	now := s.now()
	token, err := generateToken(action, now)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(Pending{Action: action, Params: params, CreatedAt: now.UTC()})
	if err != nil {
		return "", fmt.Errorf("marshal pending confirmation: %w", err)
	}
	if err := s.store.Set(ctx, tokenKeyPrefix+token, data, s.ttl); err != nil {
		return "", fmt.Errorf("persist pending confirmation: %w", err)
	}
	tokensIssuedTotal.Inc()
	return token, nil
}

// Peek returns the pending record for token without consuming it.
func (s *TokenStore) Peek(ctx context.Context, token string) (Pending, bool, error) {
	if !tokenPattern.MatchString(token) {
		return Pending{}, false, nil
	}
	raw, ok, err := s.store.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		return Pending{}, false, fmt.Errorf("read pending confirmation: %w", err)
	}
	if !ok {
		return Pending{}, false, nil
	}
	return s.decode(ctx, token, raw)
}

// Consume atomically reads and removes the pending record for token. Only the first
// call for a token observes the record.
func (s *TokenStore) Consume(ctx context.Context, token string) (Pending, bool, error) {
	if !tokenPattern.MatchString(token) {
		return Pending{}, false, nil
	}
	raw, ok, err := s.store.Take(ctx, tokenKeyPrefix+token)
	if err != nil {
		return Pending{}, false, fmt.Errorf("consume pending confirmation: %w", err)
	}
	if !ok {
		return Pending{}, false, nil
	}
	return s.decode(ctx, token, raw)
}

// A record that cannot be decoded is reported as absent; it cannot be resolved anyway.
func (s *TokenStore) decode(ctx context.Context, token string, raw []byte) (Pending, bool, error) {
	var p Pending
	if err := json.Unmarshal(raw, &p); err != nil {
		logger := xglog.WithComponentFromContext(ctx, "confirm")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "confirm.record_corrupt").
			Str(xglog.FieldTokenHash, xglog.TokenHash(token)).
			Msg("discarding undecodable pending confirmation")
		return Pending{}, false, nil
	}
	p.Token = token
	return p, true, nil
}
