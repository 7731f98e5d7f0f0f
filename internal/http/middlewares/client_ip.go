package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver decide la IP de origen de un request. X-Forwarded-For
// solo cuenta cuando el peer TCP es un proxy confiable; sin proxies
// configurados la IP es siempre la del peer.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver acepta CIDRs ("10.0.0.0/8") o IPs sueltas.
func NewClientIPResolver(trusted []string) (*ClientIPResolver, error) {
	c := &ClientIPResolver{}
	for _, s := range trusted {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
			}
			addr = addr.Unmap()
			c.trusted = append(c.trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		c.trusted = append(c.trusted, p.Masked())
	}
	return c, nil
}

func (c *ClientIPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve recorre X-Forwarded-For de derecha a izquierda saltando proxies
// confiables. La primera IP no confiable es el cliente. Un hop que no es IP
// corta el recorrido en el último proxy confiable.
func (c *ClientIPResolver) Resolve(r *http.Request) string {
	ip := peerIP(r)
	if c == nil || len(c.trusted) == 0 || !c.isTrusted(ip) {
		return ip
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			return ip
		}
		if !c.isTrusted(hop) {
			return hop
		}
		ip = hop
	}
	return ip
}

// WithClientIP resuelve la IP una vez y la deja en el contexto para el
// logging y el rate limiting.
func WithClientIP(c *ClientIPResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(setClientIP(r.Context(), c.Resolve(r))))
		})
	}
}

// clientIP devuelve la IP resuelta por WithClientIP o, sin ese middleware,
// la del peer. Nunca lee X-Forwarded-For por su cuenta.
func clientIP(r *http.Request) string {
	if ip := getClientIP(r.Context()); ip != "" {
		return ip
	}
	return peerIP(r)
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
