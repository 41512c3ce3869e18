package httpapi

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

type RateLimitConfig struct {
	IPPerMinute   int
	IPBurst       int
	UserPerMinute int
	UserBurst     int
	// TrustedProxies are the peers allowed to name the client through
	// X-Forwarded-For. Everyone else is keyed by their socket address.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies accepts CIDRs and bare addresses.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		if prefix, err := netip.ParsePrefix(value); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: not an address or CIDR", value)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// RateLimiter applies token buckets per client IP in Middleware and per
// signed-in user through AllowUser.
type RateLimiter struct {
	ipLimiter   *tokenLimiter
	userLimiter *tokenLimiter
	trusted     []netip.Prefix
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		ipLimiter:   newTokenLimiter(cfg.IPPerMinute, cfg.IPBurst),
		userLimiter: newTokenLimiter(cfg.UserPerMinute, cfg.UserBurst),
		trusted:     cfg.TrustedProxies,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := l.clientIP(r); ip != "" {
			if wait, ok := l.ipLimiter.take(ip); !ok {
				writeRateLimited(w, wait)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AllowUser spends one token from userID's bucket. When the bucket is empty
// it reports how long until the next token.
func (l *RateLimiter) AllowUser(userID string) (time.Duration, bool) {
	if userID == "" {
		return 0, true
	}
	return l.userLimiter.take(userID)
}

func writeRateLimited(w http.ResponseWriter, wait time.Duration) {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, "too many requests")
}

// sweepEvery is how many takes pass between scans for idle buckets.
const sweepEvery = 1024

type tokenLimiter struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	buckets map[string]*bucket
	takes   int
	now     func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newTokenLimiter(perMinute, burst int) *tokenLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 20
	}
	return &tokenLimiter{
		rate:    float64(perMinute) / 60.0,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *tokenLimiter) take(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.takes++
	if l.takes%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[key] = b
	}
	b.tokens = l.refill(b, now)
	b.seen = now
	if b.tokens < 1 {
		missing := 1 - b.tokens
		return time.Duration(missing / l.rate * float64(time.Second)), false
	}
	b.tokens--
	return 0, true
}

func (l *tokenLimiter) refill(b *bucket, now time.Time) float64 {
	return min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.rate)
}

// sweep drops buckets that have refilled completely; a fresh bucket behaves
// the same.
func (l *tokenLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if l.refill(b, now) >= l.burst {
			delete(l.buckets, key)
		}
	}
}

// clientIP keys the per-IP bucket. X-Forwarded-For is read right to left
// only while the hop that appended the entry is a trusted proxy.
func (l *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	peer = peer.Unmap()
	if !l.isTrusted(peer) {
		return peer.String()
	}

	client := peer
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !l.isTrusted(client) {
			break
		}
	}
	return client.String()
}

func (l *RateLimiter) isTrusted(addr netip.Addr) bool {
	for _, prefix := range l.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
