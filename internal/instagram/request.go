package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/maxugly/cobalt/internal/cookie"
)

// requestJSON issues an API request with the platform headers attached and
// decodes the JSON response into out. Two side effects are required for
// subsequent requests not to be silently degraded by the upstream server: an
// updated claim header is written back into the session handle, and the raw
// response headers are forwarded to the cookie store.
func (r *Resolver) requestJSON(ctx context.Context, rawURL string, sess *cookie.Session, method string, form url.Values, out any) error {
	var body io.Reader
	if method == http.MethodPost && form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	r.applyCommonHeaders(req.Header)
	claim := "0"
	if sess != nil {
		if c := sess.WWWClaim(); c != "" {
			claim = c
		}
		if csrf := sess.Value("csrftoken"); csrf != "" {
			req.Header.Set("X-Csrftoken", csrf)
		}
		req.Header.Set("Cookie", sess.CookieHeader())
	}
	req.Header.Set("X-Ig-Www-Claim", claim)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if newClaim := resp.Header.Get("X-Ig-Set-Www-Claim"); newClaim != "" && sess != nil {
		sess.SetWWWClaim(newClaim)
	}
	r.cookies.Update(sess, resp.Header)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
