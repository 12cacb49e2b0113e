package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	logctx "github.com/pribylovaa/web3-hub/pkg/log"
)

// Неактивные клиенты вычищаются не чаще sweepEvery, если молчат дольше idleTTL.
const (
	idleTTL    = 5 * time.Minute
	sweepEvery = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter — token bucket на каждый клиентский IP.
//
// Клиентом считается адрес соединения. X-Forwarded-For читается только
// если соединение пришло от доверенного прокси (WithTrustedProxies).
type IPLimiter struct {
	rps     rate.Limit
	burst   int
	now     func() time.Time
	trusted []netip.Prefix

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// LimiterOption настраивает IPLimiter.
type LimiterOption func(*IPLimiter)

// WithTrustedProxies задаёт сети прокси, которым разрешено сообщать адрес клиента.
func WithTrustedProxies(prefixes ...netip.Prefix) LimiterOption {
	return func(l *IPLimiter) { l.trusted = append(l.trusted, prefixes...) }
}

// NewIPLimiter создаёт лимитер: rps запросов в секунду, всплеск до burst.
func NewIPLimiter(rps float64, burst int, opts ...LimiterOption) *IPLimiter {
	l := &IPLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow расходует токен клиента ip.
func (l *IPLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= sweepEvery {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// RateLimit отвечает 429, когда клиент исчерпал свой лимит.
// rps <= 0 делает мидлвар no-op.
func RateLimit(l *IPLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil || l.rps <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.clientIP(r)
			if !l.Allow(ip) {
				logctx.From(r.Context()).Warn("rate_limited",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				apierrors.WriteError(w, r, apierrors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP — хост из RemoteAddr. Если это доверенный прокси, берётся самый правый
// адрес X-Forwarded-For, который сам не является доверенным прокси.
func (l *IPLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if !l.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			// Мусор в цепочке: дальше влево верить нечему.
			break
		}
		if !l.isTrusted(hop) {
			return addr.Unmap().String()
		}
	}

	return host
}

func (l *IPLimiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}
