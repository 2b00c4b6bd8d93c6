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
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshInterval bounds how often an unknown kid can trigger a refetch.
const refreshInterval = time.Minute

var ErrKeyNotFound = errors.New("jwks: signing key not found")

type keySet struct {
	Keys []jsonWebKey `json:"keys"`
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Provider resolves RS256 verification keys from a JWKS endpoint and keeps
// the parsed keys in memory.
type Provider struct {
	url        string
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	refreshed time.Time
}

func NewProvider(jwksURL string) *Provider {
	return &Provider{
		url:        jwksURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// KeyFunc satisfies jwt.Keyfunc for RS* tokens.
func (p *Provider) KeyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("jwks: kid header missing")
	}
	return p.Key(context.Background(), kid)
}

func (p *Provider) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key := p.cached(kid); key != nil {
		return key, nil
	}
	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	if key := p.cached(kid); key != nil {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (p *Provider) cached(kid string) *rsa.PublicKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.keys[kid]
}

func (p *Provider) refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) > 0 && time.Since(p.refreshed) < refreshInterval {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("jwks: build request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: unexpected status %d", resp.StatusCode)
	}

	var set keySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("jwks: decode: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	p.keys = keys
	p.refreshed = time.Now()
	return nil
}

func (k jsonWebKey) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("jwks: invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
