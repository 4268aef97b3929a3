package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cobros/console-gateway/internal/core/ports"
)

// TokenSource supplies the current session token for upstream calls.
type TokenSource interface {
	Token() string
}

// UpstreamProxy forwards /api/* requests to the cobros API with the session
// token attached, so the token never reaches the browser. A 401 from
// upstream raises the forced-invalidation signal; the response itself is
// still relayed to the SPA.
type UpstreamProxy struct {
	proxy *httputil.ReverseProxy
}

// NewUpstreamProxy builds the proxy. The /api prefix is stripped before the
// request is joined to the upstream path.
func NewUpstreamProxy(upstream *url.URL, tokens TokenSource, invalidator ports.Invalidator, log zerolog.Logger) *UpstreamProxy {
	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = upstream.Scheme
			req.URL.Host = upstream.Host
			req.URL.Path = singleJoin(upstream.Path, strings.TrimPrefix(req.URL.Path, "/api"))
			req.Host = upstream.Host
			req.Header.Del("Authorization")
			if token := tokens.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			if resp.StatusCode == http.StatusUnauthorized && invalidator != nil {
				invalidator.SessionInvalidated("session expired or revoked")
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("upstream proxy failed")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"no connection to upstream"}`))
		},
	}
	return &UpstreamProxy{proxy: proxy}
}

// Handle serves one proxied request.
func (p *UpstreamProxy) Handle(c echo.Context) error {
	p.proxy.ServeHTTP(c.Response(), c.Request())
	return nil
}

func singleJoin(a, b string) string {
	switch {
	case strings.HasSuffix(a, "/") && strings.HasPrefix(b, "/"):
		return a + b[1:]
	case !strings.HasSuffix(a, "/") && !strings.HasPrefix(b, "/") && b != "":
		return a + "/" + b
	default:
		return a + b
	}
}
