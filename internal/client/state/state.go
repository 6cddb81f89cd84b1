// Package state provides the file-backed client state shared by all views:
// the anonymous cart identity, the session token pair and the favorites set.
// It is pure persistence; token validation and cart policy live elsewhere.
package state

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/atinyakov/shopfront/internal/models"
)

// cartCodeAlphabet is the alphabet cart identities are sampled from.
const cartCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// cartCodeLength is the length of a generated cart identity.
const cartCodeLength = 10

// persisted is the on-disk layout of the state file.
type persisted struct {
	CartCode  string            `json:"cart_code,omitempty"`
	Tokens    *models.TokenPair `json:"tokens,omitempty"`
	Favorites map[int64]bool    `json:"favorites,omitempty"`
}

// Store is the process-wide client state. All mutations are written through
// to the state file before they are observable, so a reload after restart
// sees the same identity and tokens.
type Store struct {
	path string
	mu   sync.Mutex
	data persisted
}

// Open loads the state file at path, creating an empty state when the file
// does not exist yet. Any other read error is returned as-is; callers treat
// it as fatal to all cart operations.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data.Favorites = make(map[int64]bool)
			return s, nil
		}
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&s.data); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	if s.data.Favorites == nil {
		s.data.Favorites = make(map[int64]bool)
	}
	return s, nil
}

// save writes the current state to disk. Callers must hold mu.
func (s *Store) save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(&s.data)
}

// GetOrCreateCartCode returns the persisted cart identity, generating and
// persisting a new one on first use. Repeated calls return the same value
// until ClearCartCode. The value is persisted before it is returned, so a
// generation that cannot be stored is never handed out.
func (s *Store) GetOrCreateCartCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code := strings.TrimSpace(s.data.CartCode); code != "" {
		return code, nil
	}

	code, err := newCartCode()
	if err != nil {
		return "", err
	}
	s.data.CartCode = code
	if err := s.save(); err != nil {
		s.data.CartCode = ""
		return "", err
	}
	return code, nil
}

// ClearCartCode drops the persisted cart identity. Called only after a
// successful order placement; a non-empty server cart must keep its code.
func (s *Store) ClearCartCode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.CartCode = ""
	return s.save()
}

// newCartCode samples cartCodeLength characters uniformly from
// cartCodeAlphabet using crypto/rand.
func newCartCode() (string, error) {
	max := big.NewInt(int64(len(cartCodeAlphabet)))
	b := make([]byte, cartCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate cart code: %w", err)
		}
		b[i] = cartCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Tokens returns the persisted token pair, or nil when no session exists.
func (s *Store) Tokens() *models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Tokens == nil {
		return nil
	}
	pair := *s.data.Tokens
	return &pair
}

// SetTokens persists the token pair. Contents are not validated here.
func (s *Store) SetTokens(pair models.TokenPair) error {
	if pair.Access == "" {
		return errors.New("empty access token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Tokens = &pair
	return s.save()
}

// SetAccessToken replaces only the access half of the pair, keeping the
// refresh token. Used after a token renewal.
func (s *Store) SetAccessToken(access string) error {
	if access == "" {
		return errors.New("empty access token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Tokens == nil {
		s.data.Tokens = &models.TokenPair{}
	}
	s.data.Tokens.Access = access
	return s.save()
}

// ClearTokens drops the persisted token pair (logout or hard auth failure).
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Tokens = nil
	return s.save()
}

// ToggleFavorite flips the liked flag for a product and returns the new
// value. Favorites are client-side only; no server round trip happens here.
func (s *Store) ToggleFavorite(productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked := !s.data.Favorites[productID]
	if liked {
		s.data.Favorites[productID] = true
	} else {
		delete(s.data.Favorites, productID)
	}
	if err := s.save(); err != nil {
		return false, err
	}
	return liked, nil
}

// IsFavorite reports whether the product is currently liked.
func (s *Store) IsFavorite(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Favorites[productID]
}

// Favorites returns the ids of all liked products.
func (s *Store) Favorites() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.data.Favorites))
	for id := range s.data.Favorites {
		ids = append(ids, id)
	}
	return ids
}
