package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// FirebaseJWKSURL serves the public keys that sign Firebase ID tokens.
const FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// keyTTL is how long fetched keys are trusted before a refresh.
const keyTTL = time.Hour

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid identity token")

type jwkSet struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// firebaseClaims are the claims we read from a Firebase ID token.
type firebaseClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// FirebaseVerifier verifies Firebase ID tokens (RS256) against Google's
// published keys. Keys are cached and refreshed when an unknown kid shows up.
type FirebaseVerifier struct {
	projectID  string
	issuer     string
	jwksURL    string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// FirebaseOption customizes a FirebaseVerifier.
type FirebaseOption func(*FirebaseVerifier)

// WithJWKSURL overrides the key endpoint.
func WithJWKSURL(url string) FirebaseOption {
	return func(v *FirebaseVerifier) { v.jwksURL = url }
}

// WithHTTPClient overrides the client used to fetch keys.
func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(v *FirebaseVerifier) { v.httpClient = c }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) FirebaseOption {
	return func(v *FirebaseVerifier) { v.now = now }
}

// NewFirebaseVerifier creates a verifier for tokens issued to projectID.
func NewFirebaseVerifier(projectID string, opts ...FirebaseOption) *FirebaseVerifier {
	v := &FirebaseVerifier{
		projectID:  projectID,
		issuer:     "https://securetoken.google.com/" + projectID,
		jwksURL:    FirebaseJWKSURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		keys:       make(map[string]*rsa.PublicKey),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the token's signature, issuer, audience and expiry and
// returns the identity it asserts.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	if err := v.ensureKeys(ctx); err != nil {
		return domain.Identity{}, fmt.Errorf("load signing keys: %w", err)
	}

	claims := &firebaseClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if key, ok := v.keyFor(kid); ok {
			return key, nil
		}
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
		if key, ok := v.keyFor(kid); ok {
			return key, nil
		}
		return nil, fmt.Errorf("unknown kid %q", kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	first, last := splitName(claims.Name)
	return domain.Identity{
		Subject:         claims.Subject,
		Email:           claims.Email,
		FirstName:       first,
		LastName:        last,
		ProfileImageURL: claims.Picture,
	}, nil
}

func (v *FirebaseVerifier) ensureKeys(ctx context.Context) error {
	v.mu.RLock()
	fresh := v.now().Sub(v.fetched) < keyTTL && len(v.keys) > 0
	v.mu.RUnlock()
	if fresh {
		return nil
	}
	return v.refresh(ctx)
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return err
	}
	keys := make(map[string]*rsa.PublicKey)
	for _, key := range set.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(key)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("no keys fetched")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetched = v.now()
	v.mu.Unlock()
	return nil
}

func (v *FirebaseVerifier) keyFor(kid string) (*rsa.PublicKey, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok := v.keys[kid]
	return key, ok
}

func rsaKeyFromJWK(j jwkKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

// splitName splits a display name into first name and the rest.
func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}
