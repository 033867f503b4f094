// Package botauth validates the bearer tokens the Bot Framework channel attaches
// to inbound activities.
package botauth

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

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// Issuer is the only accepted iss claim for channel-issued tokens.
	Issuer = "https://api.botframework.com"

	Leeway = 5 * time.Minute

	keyCacheSize       = 64
	minRefreshInterval = 30 * time.Second
)

var ErrUnauthorized = errors.New("unauthorized")

var errUnknownKey = errors.New("signing key not found")

// Reason codes carried by *Error, used as metric labels.
const (
	ReasonMissingToken    = "missing_token"
	ReasonUnknownKey      = "unknown_key"
	ReasonKeysUnavailable = "keys_unavailable"
	ReasonIssuer          = "issuer"
	ReasonAudience        = "audience"
	ReasonExpired         = "expired"
	ReasonServiceURL      = "service_url"
	ReasonInvalidToken    = "invalid_token"
)

// Error is a rejected token. It matches ErrUnauthorized with errors.Is.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "unauthorized: " + e.Reason
	}
	return "unauthorized: " + e.Reason + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnauthorized }

type claims struct {
	ServiceURL string `json:"serviceurl,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks tokens for one bot identity.
type Verifier struct {
	appID       string
	metadataURL string
	httpClient  *http.Client

	keys  *lru.Cache[string, *rsa.PublicKey]
	group singleflight.Group

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewVerifier returns a verifier for appID. An empty appID yields a verifier
// that accepts every request.
func NewVerifier(appID, metadataURL string, httpClient *http.Client) (*Verifier, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	keys, err := lru.New[string, *rsa.PublicKey](keyCacheSize)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		appID:       strings.TrimSpace(appID),
		metadataURL: metadataURL,
		httpClient:  httpClient,
		keys:        keys,
	}, nil
}

// Enabled reports whether tokens are checked at all.
func (v *Verifier) Enabled() bool { return v.appID != "" }

// Verify validates the Authorization header of an activity posted for serviceURL.
func (v *Verifier) Verify(ctx context.Context, authorization, serviceURL string) error {
	if !v.Enabled() {
		return nil
	}
	raw, ok := bearerToken(authorization)
	if !ok {
		return &Error{Reason: ReasonMissingToken}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(v.appID),
		jwt.WithLeeway(Leeway),
		jwt.WithExpirationRequired(),
	)
	var c claims
	_, err := parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, errUnknownKey
		}
		return v.key(ctx, kid)
	})
	if err != nil {
		return &Error{Reason: reasonFor(err), Err: err}
	}
	if c.ServiceURL != "" && !sameServiceURL(c.ServiceURL, serviceURL) {
		return &Error{Reason: ReasonServiceURL, Err: fmt.Errorf("token is for %q", c.ServiceURL)}
	}
	return nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, errUnknownKey):
		return ReasonUnknownKey
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ReasonAudience
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonKeysUnavailable
	default:
		return ReasonInvalidToken
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sameServiceURL(a, b string) bool {
	return strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(b, "/"))
}

// key returns the cached key for kid, refreshing the key set once on a miss.
func (v *Verifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := v.keys.Get(kid); ok {
		return k, nil
	}
	if !v.refreshDue() {
		// A concurrent refresh may have just landed.
		if k, ok := v.keys.Get(kid); ok {
			return k, nil
		}
		return nil, errUnknownKey
	}
	_, err, _ := v.group.Do("refresh", func() (any, error) {
		return nil, v.refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh signing keys: %w", err)
	}
	if k, ok := v.keys.Get(kid); ok {
		return k, nil
	}
	return nil, errUnknownKey
}

func (v *Verifier) refreshDue() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastRefresh.IsZero() || time.Since(v.lastRefresh) >= minRefreshInterval
}

type openIDMetadata struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *Verifier) refresh(ctx context.Context) error {
	var meta openIDMetadata
	if err := v.getJSON(ctx, v.metadataURL, &meta); err != nil {
		return fmt.Errorf("openid metadata: %w", err)
	}
	if strings.TrimSpace(meta.JWKSURI) == "" {
		return errors.New("openid metadata missing jwks_uri")
	}
	var set jwkSet
	if err := v.getJSON(ctx, meta.JWKSURI, &set); err != nil {
		return fmt.Errorf("jwks: %w", err)
	}

	added := 0
	for _, k := range set.Keys {
		if k.Kty != "RSA" || strings.TrimSpace(k.Kid) == "" {
			continue
		}
		pub, err := rsaFromModExp(k.N, k.E)
		if err != nil {
			continue
		}
		v.keys.Add(k.Kid, pub)
		added++
	}

	v.mu.Lock()
	v.lastRefresh = time.Now()
	v.mu.Unlock()

	if added == 0 {
		return errors.New("jwks contained no usable keys")
	}
	return nil
}

func (v *Verifier) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("GET %s: %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
