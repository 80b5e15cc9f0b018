package instagram

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/maxugly/cobalt/generic"
	"github.com/maxugly/cobalt/internal/cookie"
)

// Just under 24 hours, to avoid refreshing exactly on the expiry boundary.
const tokenTTL = 86390 * time.Second

var tokenPattern = regexp.MustCompile(`"dtsg":\{"token":"(.*?)"`)

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// findToken returns the process-wide session token, refreshing it from the
// landing page when expired. It never fails loudly: callers treat None as "no
// token available" and proceed without one. Concurrent refreshes past an
// expired token are tolerated; the refresh is idempotent and the last write
// wins.
func (r *Resolver) findToken(ctx context.Context, sess *cookie.Session) generic.Option[string] {
	if t := r.token.Get(); t.value != "" && time.Now().Before(t.expiresAt) {
		return generic.Some(t.value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return generic.None[string]()
	}
	r.applyCommonHeaders(req.Header)
	if sess != nil {
		req.Header.Set("Cookie", sess.CookieHeader())
	}

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Debugw("token refresh failed", "error", err)
		return generic.None[string]()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return generic.None[string]()
	}
	match := tokenPattern.FindSubmatch(body)
	if match == nil || len(match[1]) == 0 {
		r.log.Debugw("token pattern not found in landing page")
		return generic.None[string]()
	}

	token := string(match[1])
	r.token.Set(cachedToken{value: token, expiresAt: time.Now().Add(tokenTTL)})
	return generic.Some(token)
}
