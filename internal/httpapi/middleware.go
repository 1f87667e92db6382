package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// responseRecorder tracks the status code written by a handler.
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.statusCode = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// accessLog emits one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"dur_ms", float64(time.Since(start).Microseconds())/1000.0,
			"client", clientKey(r),
		)
	})
}

// requireAuth rejects requests without a valid session cookie.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.guard.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		token := ""
		if c, err := r.Cookie(s.config.CookieName); err == nil {
			token = c.Value
		}
		if !s.guard.VerifySession(token) {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// throttleMiddleware applies the per-client token bucket.
func (s *Server) throttleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.throttle.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// clientThrottle keeps one token bucket per client. Idle buckets are swept
// lazily during Allow.
type clientThrottle struct {
	mu        sync.Mutex
	limiters  map[string]*throttleEntry
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientThrottle(rps float64, burst int, idle time.Duration) *clientThrottle {
	if burst < 1 {
		burst = 1
	}
	return &clientThrottle{
		limiters: make(map[string]*throttleEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

// Allow reports whether key may make a request now.
func (t *clientThrottle) Allow(key string) bool {
	t.mu.Lock()
	now := t.now()
	if now.Sub(t.lastSweep) > t.idle {
		for k, e := range t.limiters {
			if now.Sub(e.lastUsed) > t.idle {
				delete(t.limiters, k)
			}
		}
		t.lastSweep = now
	}

	e, ok := t.limiters[key]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.rps, t.burst)}
		t.limiters[key] = e
	}
	e.lastUsed = now
	t.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (t *clientThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

func retryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
