package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/internal/cookie"
)

var embedContextPattern = regexp.MustCompile(`"init",\[\],\[(.*?)\]\],`)

var errNoMediaItems = errors.New("no media items in response")

// Post resolves a post id, degrading tier by tier: anonymous embed page,
// embed page with session, then the authenticated GraphQL call. Network and
// parse failures within a tier are tier failures, not resolution failures.
func (r *Resolver) Post(ctx context.Context, id string) (cobalt.Descriptor, error) {
	log := r.log.With("post", id)
	sess := r.cookies.Get(Service)

	var legacy *legacyPayload
	var modern *mediaItem

	tiers := []struct {
		name  string
		fetch func() bool
	}{
		{"embed", func() bool {
			payload, err := r.fetchEmbedPage(ctx, id, nil)
			if err != nil {
				log.Debugw("fetch tier failed", "tier", "embed", "error", err)
				return false
			}
			legacy = payload
			return true
		}},
		{"embed+session", func() bool {
			if sess == nil {
				return false
			}
			payload, err := r.fetchEmbedPage(ctx, id, sess)
			if err != nil {
				log.Debugw("fetch tier failed", "tier", "embed+session", "error", err)
				return false
			}
			legacy = payload
			return true
		}},
		{"graphql", func() bool {
			item, err := r.fetchPostGraphQL(ctx, id, sess)
			if err != nil {
				log.Debugw("fetch tier failed", "tier", "graphql", "error", err)
				return false
			}
			modern = item
			return true
		}},
	}
	for _, tier := range tiers {
		if tier.fetch() {
			break
		}
	}

	switch {
	case legacy != nil:
		if desc, ok := extractLegacyPost(legacy, id, r.streams); ok {
			return desc, nil
		}
		return nil, cobalt.NewError(cobalt.ErrKindEmptyDownload)
	case modern != nil:
		if desc, ok := extractModernPost(modern, id, r.streams); ok {
			return desc, nil
		}
		return nil, cobalt.NewError(cobalt.ErrKindEmptyDownload)
	default:
		return nil, cobalt.NewError(cobalt.ErrKindCouldntFetch)
	}
}

// fetchEmbedPage pulls the public embed HTML for a post and digs the media
// context out of the inline script data. With a session attached it also
// works for embeds blocked for anonymous access.
func (r *Resolver) fetchEmbedPage(ctx context.Context, id string, sess *cookie.Session) (*legacyPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/p/"+url.PathEscape(id)+"/embed/captioned/", nil)
	if err != nil {
		return nil, err
	}
	for name, value := range embedPageHeaders {
		req.Header.Set(name, value)
	}
	if sess != nil {
		req.Header.Set("Cookie", sess.CookieHeader())
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed page fetch failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	match := embedContextPattern.FindSubmatch(body)
	if match == nil {
		return nil, errors.New("embed context anchor not found")
	}
	var envelope struct {
		ContextJSON string `json:"contextJSON"`
	}
	if err := json.Unmarshal(match[1], &envelope); err != nil {
		return nil, fmt.Errorf("malformed embed context: %w", err)
	}
	if envelope.ContextJSON == "" {
		return nil, errors.New("embed context has no contextJSON")
	}
	var payload legacyPayload
	if err := json.Unmarshal([]byte(envelope.ContextJSON), &payload); err != nil {
		return nil, fmt.Errorf("malformed contextJSON: %w", err)
	}
	return &payload, nil
}

// fetchPostGraphQL queries the media web-info GraphQL document for a post id.
// The session token is optional; the query is sent without one when the
// token cache cannot produce one.
func (r *Resolver) fetchPostGraphQL(ctx context.Context, id string, sess *cookie.Session) (*mediaItem, error) {
	variables, err := json.Marshal(map[string]any{
		"shortcode": id,
		"__relay_internal__pv__PolarisShareMenurelayprovider": false,
	})
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("jazoest", postJazoest)
	form.Set("variables", string(variables))
	form.Set("doc_id", postDocID)
	if sess != nil {
		if token := r.findToken(ctx, sess); token.IsSome() {
			form.Set("fb_dtsg", token.Unwrap())
		}
	}

	var payload graphQLMediaResponse
	if err := r.requestJSON(ctx, graphQLURL, sess, http.MethodPost, form, &payload); err != nil {
		return nil, err
	}
	items := payload.Data.WebInfo.Items
	if len(items) == 0 {
		return nil, errNoMediaItems
	}
	return &items[0], nil
}

// Embed pages are served to browsers only; these are the headers of a plain
// Chrome navigation.
var embedPageHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           "en-GB,en;q=0.9",
	"Cache-Control":             "max-age=0",
	"Dnt":                       "1",
	"Priority":                  "u=0, i",
	"Sec-Ch-Ua":                 `Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        "macOS",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}
