package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	xe "github.com/kickplate/kickplate/pkg/errors"
)

var ErrUnknownKey = errors.New("no such key in JWKS")

// KeySource looks up RSA public keys by key id.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// RemoteJWKS is a KeySource reading a JWKS document over HTTP.
//
// Keys are cached. The document is fetched again when the cache is older than
// the refresh interval, or when an unknown key id is asked and the last fetch
// is older than the minimum interval.
type RemoteJWKS struct {
	url    string
	client *http.Client

	refreshInterval time.Duration
	minInterval     time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

type JWKSOption func(*RemoteJWKS) *RemoteJWKS

func WithHTTPClient(c *http.Client) JWKSOption {
	return func(j *RemoteJWKS) *RemoteJWKS {
		j.client = c
		return j
	}
}

// WithRefreshInterval sets the lifetime of cached keys.
func WithRefreshInterval(d time.Duration) JWKSOption {
	return func(j *RemoteJWKS) *RemoteJWKS {
		j.refreshInterval = d
		return j
	}
}

// WithMinInterval sets the shortest interval between fetches triggered by unknown key ids.
func WithMinInterval(d time.Duration) JWKSOption {
	return func(j *RemoteJWKS) *RemoteJWKS {
		j.minInterval = d
		return j
	}
}

func NewRemoteJWKS(url string, options ...JWKSOption) *RemoteJWKS {
	j := &RemoteJWKS{
		url:             url,
		client:          &http.Client{Timeout: 10 * time.Second},
		refreshInterval: time.Hour,
		minInterval:     30 * time.Second,
	}
	for _, opt := range options {
		j = opt(j)
	}
	return j
}

func (j *RemoteJWKS) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	key, ok := j.keys[kid]
	age := time.Since(j.fetchedAt)
	fetched := !j.fetchedAt.IsZero()
	j.mu.RUnlock()

	stale := !fetched || j.refreshInterval < age
	if ok && !stale {
		return key, nil
	}
	if fetched && !stale && age < j.minInterval {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
	}

	if err := j.Refresh(ctx); err != nil {
		if ok {
			// keep serving the cached key while the issuer is unreachable.
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if key, ok := j.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, kid)
}

// Refresh fetches the JWKS document and replaces cached keys.
//
// Keys other than RSA public keys are ignored.
func (j *RemoteJWKS) Refresh(ctx context.Context) error {
	var set jose.JSONWebKeySet
	if err := getJSON(ctx, j.client, j.url, &set); err != nil {
		return xe.WrapWithNote("fetching JWKS", err)
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		if pub, ok := k.Key.(*rsa.PublicKey); ok {
			keys[k.KeyID] = pub
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.keys = keys
	j.fetchedAt = time.Now()
	return nil
}

// DiscoverJWKS reads the OpenID Provider configuration and returns its jwks_uri.
func DiscoverJWKS(ctx context.Context, client *http.Client, openidConfigURL string) (string, error) {
	conf := struct {
		JWKSURI string `json:"jwks_uri"`
	}{}
	if err := getJSON(ctx, client, openidConfigURL, &conf); err != nil {
		return "", xe.WrapWithNote("fetching openid configuration", err)
	}
	if conf.JWKSURI == "" {
		return "", xe.New("openid configuration has no jwks_uri")
	}
	return conf.JWKSURI, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
