package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"
)

func newTestGuard(t testing.TB, cfg GuardConfig) (*Guard, *FakeClock) {
	clock := NewFakeClock(epoch)
	if cfg.Limiter == nil {
		cfg.Limiter = NewLimiter(DefaultLimiterConfig, clock)
	}
	g, err := NewGuard(cfg)
	require.NoError(t, err)
	return g, clock
}

func TestGuard_Open(t *testing.T) {
	g, _ := newTestGuard(t, GuardConfig{})

	assert.False(t, g.Enabled())
	assert.Equal(t, ModeOpen, g.Mode())
	assert.True(t, g.VerifySession(""))
	assert.True(t, g.VerifySession("anything"))

	res, err := g.Login("whatever", "c")
	require.NoError(t, err)
	assert.False(t, res.Required)
	assert.Empty(t, res.Token)
	assert.Equal(t, MessageNotRequired, res.Message)
}

func TestGuard_Plain(t *testing.T) {
	g, _ := newTestGuard(t, GuardConfig{Secret: "s3cret"})
	require.True(t, g.Enabled())

	// sha256("s3cret")
	want := SessionToken("s3cret")
	assert.Len(t, want, 64)

	res, err := g.Login("s3cret", "c")
	require.NoError(t, err)
	assert.Equal(t, want, res.Token)
	assert.Equal(t, MessageLoggedIn, res.Message)

	assert.True(t, g.VerifySession(want))
	assert.False(t, g.VerifySession(""))
	assert.False(t, g.VerifySession(want[:63]))
	assert.False(t, g.VerifySession("s3cret"))

	_, err = g.Login("wrong", "c")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, MessageLoggedOut, g.Logout().Message)
}

func TestGuard_Bcrypt(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	g, _ := newTestGuard(t, GuardConfig{Secret: "ignored", SecretHash: hash})
	assert.Equal(t, ModeBcrypt, g.Mode())

	_, err = g.Login("ignored", "c")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := g.Login("hunter2", "c")
	require.NoError(t, err)
	assert.Equal(t, SessionToken(hash), res.Token)
	assert.True(t, g.VerifySession(res.Token))

	_, err = NewGuard(GuardConfig{SecretHash: "not-a-hash"})
	assert.Error(t, err)

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestGuard_RateLimit(t *testing.T) {
	g, clock := newTestGuard(t, GuardConfig{Secret: "pw"})

	for i := 0; i < 5; i++ {
		_, err := g.Login("bad", "10.0.0.1")
		require.ErrorIs(t, err, ErrUnauthorized, "attempt %d", i+1)
	}

	_, err := g.Login("pw", "10.0.0.1")
	assert.ErrorIs(t, err, ErrRateLimited, "correct password must still be rejected while blocked")

	// Another client is unaffected.
	_, err = g.Login("pw", "10.0.0.2")
	assert.NoError(t, err)

	clock.Advance(301 * time.Second)
	_, err = g.Login("pw", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 0, g.Limiter().Failures("10.0.0.1"))

	state := g.State().(GuardState)
	assert.Equal(t, 2, state.Logins)
	assert.Equal(t, 5, state.Failures)
	assert.Equal(t, 1, state.RateLimited)
	assert.Equal(t, "auth", g.ComponentType())
}

func TestGuard_SuccessResetsFailures(t *testing.T) {
	g, _ := newTestGuard(t, GuardConfig{Secret: "pw"})

	for i := 0; i < 4; i++ {
		_, err := g.Login("bad", "c")
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	_, err := g.Login("pw", "c")
	require.NoError(t, err)

	// A fresh budget of five failures.
	for i := 0; i < 5; i++ {
		_, err := g.Login("bad", "c")
		require.ErrorIs(t, err, ErrUnauthorized)
	}
	_, err = g.Login("pw", "c")
	assert.ErrorIs(t, err, ErrRateLimited)
}

// Within one window the k-th consecutive attempt is rejected as rate limited
// exactly when k > threshold, whatever password it carries.
func TestGuard_Property_LimiterSequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threshold := rapid.IntRange(1, 8).Draw(t, "threshold")
		clock := NewFakeClock(epoch)
		g, err := NewGuard(GuardConfig{
			Secret:  "pw",
			Limiter: NewLimiter(LimiterConfig{Window: time.Hour, Threshold: threshold}, clock),
		})
		if err != nil {
			t.Fatal(err)
		}

		failures := 0
		attempts := rapid.SliceOfN(rapid.Bool(), 1, 20).Draw(t, "correct")
		for i, correct := range attempts {
			password := "nope"
			if correct {
				password = "pw"
			}
			clock.Advance(time.Second)
			_, err := g.Login(password, "client")

			switch {
			case failures >= threshold:
				if err != ErrRateLimited {
					t.Fatalf("attempt %d: want ErrRateLimited, got %v", i, err)
				}
			case correct:
				if err != nil {
					t.Fatalf("attempt %d: want success, got %v", i, err)
				}
				failures = 0
			default:
				if err != ErrUnauthorized {
					t.Fatalf("attempt %d: want ErrUnauthorized, got %v", i, err)
				}
				failures++
			}
		}
	})
}
