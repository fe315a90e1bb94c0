package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names read by identity resolution.
const (
	ClaimEmail     = "email"
	ClaimGivenName = "given_name"
	ClaimName      = "name"
	ClaimSubject   = "sub"
)

// Claims represents the verified JWT claims from Auth0.
// Different identity providers populate different subsets of these fields.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Get returns the named claim and whether it carries a non-empty value.
// It is safe to call on a nil receiver.
func (c *Claims) Get(name string) (string, bool) {
	if c == nil {
		return "", false
	}

	var v string
	switch name {
	case ClaimEmail:
		v = c.Email
	case ClaimGivenName:
		v = c.GivenName
	case ClaimName:
		v = c.Name
	case ClaimSubject:
		v = c.Subject
	}
	return v, v != ""
}

// Verifier handles JWT verification using Auth0.
type Verifier struct {
	domain   string
	audience string
	jwks     *JWKSCache
}

// Config holds Auth0 JWT verification configuration.
type Config struct {
	Domain   string // e.g., "your-tenant.auth0.com"
	Audience string // e.g., "https://api.documite.io"
	Logger   *slog.Logger
}

// NewVerifier creates a new JWT verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("audience is required")
	}

	// Remove protocol if present
	domain := strings.TrimPrefix(cfg.Domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")

	jwks := NewJWKSCache(fmt.Sprintf("https://%s/.well-known/jwks.json", domain))
	if cfg.Logger != nil {
		jwks.logger = cfg.Logger
	}

	return &Verifier{
		domain:   domain,
		audience: cfg.Audience,
		jwks:     jwks,
	}, nil
}

// Verify verifies a JWT token and returns the claims.
// Signature, expiry, issuer and audience are all checked here so that
// nothing downstream has to trust an unverified claim.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("missing kid in token header")
		}
		return v.jwks.GetKey(ctx, kid)
	}, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !slices.Contains(claims.Audience, v.audience) {
		return nil, errors.New("invalid audience")
	}

	expectedIssuer := fmt.Sprintf("https://%s/", v.domain)
	if claims.Issuer != expectedIssuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", expectedIssuer, claims.Issuer)
	}

	return claims, nil
}

type claimsContextKey struct{}

// WithClaims returns a copy of ctx carrying the verified claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil when the request was not authenticated.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}

// JWKSCache caches JWKS keys from Auth0.
type JWKSCache struct {
	url        string
	mu         sync.RWMutex
	keys       map[string]any // kid -> public key
	lastFetch  time.Time
	cacheTTL   time.Duration
	minRefresh time.Duration // min gap between refetches for unknown kids
	httpClient *http.Client
	logger     *slog.Logger
}

// NewJWKSCache creates a new JWKS cache.
func NewJWKSCache(jwksURL string) *JWKSCache {
	return &JWKSCache{
		url:        jwksURL,
		keys:       make(map[string]any),
		cacheTTL:   10 * time.Minute,
		minRefresh: 30 * time.Second,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
}

// GetKey returns the public key for the given key ID.
// An unknown kid triggers a refetch even while the cache is fresh, at most once per minRefresh.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (any, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	needsRefresh := time.Since(c.lastFetch) > c.cacheTTL
	c.mu.RUnlock()

	if ok && !needsRefresh {
		return key, nil
	}

	if err := c.refresh(ctx, kid); err != nil {
		// A stale key beats failing every request while the JWKS endpoint is down.
		if ok {
			c.logger.WarnContext(ctx, "JWKS refresh failed, using cached key", "kid", kid, "error", err)
			return key, nil
		}
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("key %s not found in JWKS", kid)
	}

	return key, nil
}

// JWKS represents a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
	Alg string `json:"alg"`
}

func (c *JWKSCache) refresh(ctx context.Context, kid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring lock
	age := time.Since(c.lastFetch)
	if age < c.cacheTTL && len(c.keys) > 0 {
		if _, ok := c.keys[kid]; ok || age < c.minRefresh {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := decodeJSON(resp.Body, &jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	newKeys := make(map[string]any)
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" || key.Use != "sig" {
			continue
		}

		publicKey, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping unparsable JWKS key", "kid", key.Kid, "error", err)
			continue
		}

		newKeys[key.Kid] = publicKey
	}

	c.keys = newKeys
	c.lastFetch = time.Now()

	return nil
}
