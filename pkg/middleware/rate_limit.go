package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "tidyslot/pkg/errors"
	httputil "tidyslot/pkg/http"
	"tidyslot/pkg/logger"

	"golang.org/x/time/rate"
)

// KeyExtractor picks the bucket a request is counted against.
type KeyExtractor func(r *http.Request) string

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter allows each client limit requests per window, refilled
// continuously, with bursts up to limit.
type ClientRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	every   rate.Limit
	burst   int
	window  time.Duration
	key     KeyExtractor
	log     *logger.Logger
	stopCh  chan struct{}
	stopped sync.Once
}

func NewClientRateLimiter(limit int, window time.Duration, key KeyExtractor, log *logger.Logger) *ClientRateLimiter {
	if key == nil {
		key = ClientIP
	}
	limiter := &ClientRateLimiter{
		buckets: make(map[string]*clientBucket),
		every:   rate.Every(window / time.Duration(max(limit, 1))),
		burst:   max(limit, 1),
		window:  window,
		key:     key,
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	if client == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[client] = bucket
	}
	bucket.lastSeen = time.Now()
	return bucket.limiter.Allow()
}

// cleanup forgets clients idle for longer than a window; their bucket
// would be full again anyway.
func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(max(rl.window, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for client, bucket := range rl.buckets {
				if time.Since(bucket.lastSeen) > rl.window {
					delete(rl.buckets, client)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.stopCh) })
}

func ClientRateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := limiter.key(r)
			if !limiter.Allow(client) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestID(r.Context()),
					"client", client,
					"path", r.URL.Path,
				)
				seconds := retryAfterSeconds(limiter.every)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				httputil.WriteError(w, apperrors.RateLimited(seconds))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys requests by the connection's peer address. Forwarding headers
// are ignored since any client can set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TrustedProxyClientIP reads X-Forwarded-For and X-Real-IP only when the peer
// is one of trusted. The forwarded chain is walked from the right and the
// first hop outside trusted is the client. With no trusted proxies it is ClientIP.
func TrustedProxyClientIP(trusted []netip.Prefix) KeyExtractor {
	if len(trusted) == 0 {
		return ClientIP
	}
	isTrusted := func(ip string) bool {
		addr, err := netip.ParseAddr(strings.TrimSpace(ip))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, prefix := range trusted {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := ClientIP(r)
		if !isTrusted(peer) {
			return peer
		}
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop := strings.TrimSpace(hops[i])
				if hop == "" {
					continue
				}
				if !isTrusted(hop) {
					return hop
				}
				peer = hop
			}
			return peer
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		return peer
	}
}

func retryAfterSeconds(every rate.Limit) int {
	if every <= 0 {
		return 1
	}
	return max(1, int(1/float64(every)+0.5))
}
