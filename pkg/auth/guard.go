// Package auth implements the optional shared-secret login that protects
// mutating note operations, together with a sliding-window limiter for
// failed attempts.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"
	"golang.org/x/crypto/bcrypt"
)

// Mode describes how the guard checks credentials.
type Mode string

const (
	ModeOpen   Mode = "open"   // no secret configured
	ModePlain  Mode = "plain"  // plaintext secret, compared by SHA-256
	ModeBcrypt Mode = "bcrypt" // bcrypt hash of the secret
)

// Messages returned to callers in LoginResult.
const (
	MessageNotRequired = "login not required"
	MessageLoggedIn    = "logged in"
	MessageLoggedOut   = "logged out"
)

// GuardConfig configures a Guard. SecretHash takes precedence over Secret.
type GuardConfig struct {
	Secret     string
	SecretHash string
	Limiter    *Limiter
	Logger     *slog.Logger
}

// LoginResult is the outcome of a successful Login or Logout.
type LoginResult struct {
	Token    string `json:"-"`
	Required bool   `json:"-"`
	Message  string `json:"message"`
}

// Guard verifies the shared secret and session tokens. Its mode is fixed
// when it is created.
type Guard struct {
	mode     Mode
	expected string // session token
	hash     []byte // bcrypt mode only
	limiter  *Limiter
	logger   *slog.Logger

	mu       sync.Mutex
	logins   int
	failures int
	blocked  int
}

// NewGuard builds a guard from config.
func NewGuard(config GuardConfig) (*Guard, error) {
	g := &Guard{
		mode:    ModeOpen,
		limiter: config.Limiter,
		logger:  config.Logger,
	}
	if g.limiter == nil {
		g.limiter = NewLimiter(DefaultLimiterConfig, nil)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case config.SecretHash != "":
		if _, err := bcrypt.Cost([]byte(config.SecretHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		g.mode = ModeBcrypt
		g.hash = []byte(config.SecretHash)
		g.expected = SessionToken(config.SecretHash)
	case config.Secret != "":
		g.mode = ModePlain
		g.expected = SessionToken(config.Secret)
	}
	return g, nil
}

// SessionToken returns the hex SHA-256 digest of secret.
func SessionToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// HashPassword returns a bcrypt hash suitable for GuardConfig.SecretHash.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Enabled reports whether a secret is configured.
func (g *Guard) Enabled() bool {
	return g.mode != ModeOpen
}

// Mode returns the guard mode.
func (g *Guard) Mode() Mode {
	return g.mode
}

// Limiter exposes the attempt limiter.
func (g *Guard) Limiter() *Limiter {
	return g.limiter
}

// VerifySession reports whether token grants access. It always succeeds in
// open mode.
func (g *Guard) VerifySession(token string) bool {
	if !g.Enabled() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(g.expected)) == 1
}

// Login checks password for the client identified by clientKey. A blocked
// client is rejected with ErrRateLimited before the password is looked at.
func (g *Guard) Login(password, clientKey string) (LoginResult, error) {
	if !g.Enabled() {
		return LoginResult{Message: MessageNotRequired}, nil
	}

	if g.limiter.IsBlocked(clientKey) {
		g.count(&g.blocked)
		g.logger.Info("login rejected, client blocked", "client", clientKey)
		return LoginResult{Required: true}, ErrRateLimited
	}

	if !g.checkPassword(password) {
		g.limiter.RecordFailure(clientKey)
		g.count(&g.failures)
		g.logger.Info("login failed", "client", clientKey, "recent_failures", g.limiter.Failures(clientKey))
		return LoginResult{Required: true}, ErrUnauthorized
	}

	g.limiter.Clear(clientKey)
	g.count(&g.logins)
	g.logger.Info("login succeeded", "client", clientKey)
	return LoginResult{Token: g.expected, Required: true, Message: MessageLoggedIn}, nil
}

// Logout always succeeds. Expiring the credential is up to the transport.
func (g *Guard) Logout() LoginResult {
	return LoginResult{Required: g.Enabled(), Message: MessageLoggedOut}
}

func (g *Guard) checkPassword(password string) bool {
	if g.mode == ModeBcrypt {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(SessionToken(password)), []byte(g.expected)) == 1
}

func (g *Guard) count(c *int) {
	g.mu.Lock()
	*c++
	g.mu.Unlock()
}

// GuardState exposes internal state for observability.
type GuardState struct {
	Mode           Mode   `json:"mode"`
	Window         string `json:"window"`
	Threshold      int    `json:"threshold"`
	TrackedClients int    `json:"tracked_clients"`
	Logins         int    `json:"logins"`
	Failures       int    `json:"failures"`
	RateLimited    int    `json:"rate_limited"`
}

// State implements introspection.Introspectable.
func (g *Guard) State() any {
	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := g.limiter.Config()
	return GuardState{
		Mode:           g.mode,
		Window:         cfg.Window.String(),
		Threshold:      cfg.Threshold,
		TrackedClients: g.limiter.Len(),
		Logins:         g.logins,
		Failures:       g.failures,
		RateLimited:    g.blocked,
	}
}

// ComponentType implements introspection.Component.
func (g *Guard) ComponentType() string {
	return "auth"
}

var _ introspection.Introspectable = (*Guard)(nil)
var _ introspection.Component = (*Guard)(nil)
