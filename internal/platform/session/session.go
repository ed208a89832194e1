// Package session issues and opens Bloom's encrypted session values.
//
// A session value is an HS256 JWT sealed with XChaCha20-Poly1305 and base64url encoded, so the
// cookie is both tamper-proof and opaque to the browser. Both keys are derived from one secret
// with HKDF-SHA256.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const CookieName = "bloom_session"

var (
	ErrMissingSecret = errors.New("session secret is required")
	ErrInvalid       = errors.New("invalid session")
	ErrExpired       = errors.New("session expired")
)

type Claims struct {
	CompanyID uuid.UUID `json:"company_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// Identity is what a valid session resolves to.
type Identity struct {
	SessionID string
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
	ExpiresAt time.Time
}

type Manager struct {
	signKey []byte
	aead    cipherAEAD
	ttl     time.Duration
	now     func() time.Time
}

type cipherAEAD interface {
	NonceSize() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	signKey, err := deriveKey(secret, "bloom-session-sign", 32)
	if err != nil {
		return nil, err
	}
	sealKey, err := deriveKey(secret, "bloom-session-seal", chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(sealKey)
	if err != nil {
		return nil, fmt.Errorf("init session cipher: %w", err)
	}
	return &Manager{signKey: signKey, aead: aead, ttl: ttl, now: time.Now}, nil
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue returns a sealed session value for the user.
func (m *Manager) Issue(userID, companyID uuid.UUID, role string) (string, error) {
	if userID == uuid.Nil || companyID == uuid.Nil {
		return "", fmt.Errorf("issue session: user and company are required")
	}
	now := m.now()
	claims := Claims{
		CompanyID: companyID,
		Role:      normalizeRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("session nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts and verifies a session value.
func (m *Manager) Open(value string) (*Identity, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, ErrInvalid
	}
	ns := m.aead.NonceSize()
	if len(raw) <= ns {
		return nil, ErrInvalid
	}
	plain, err := m.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, ErrInvalid
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(string(plain), &claims, func(t *jwt.Token) (interface{}, error) {
		return m.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil || claims.CompanyID == uuid.Nil {
		return nil, ErrInvalid
	}
	id := &Identity{
		SessionID: claims.ID,
		UserID:    userID,
		CompanyID: claims.CompanyID,
		Role:      normalizeRole(claims.Role),
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), "admin") {
		return "admin"
	}
	return "member"
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	out := make([]byte, size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return out, nil
}
