// Package instagram resolves post and story identifiers into media
// descriptors, degrading through anonymous and authenticated fetch tiers.
package instagram

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/internal/cookie"
	"github.com/maxugly/cobalt/internal/streamproxy"
	"github.com/maxugly/cobalt/internal/sync_"
)

const Service = "instagram"

const (
	baseURL     = "https://www.instagram.com"
	graphQLURL  = baseURL + "/api/graphql/"
	embedAppID  = "936619743392459"
	postDocID   = "7153618348081770"
	postJazoest = "26406"
	// The story reels query uses its own doc id and jazoest value.
	storyDocID   = "25317500907894419"
	storyJazoest = "26438"
)

// HTTPDoer is the transport capability this resolver depends on; timeouts and
// proxying are the transport's concern, not ours.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient HTTPDoer
	Cookies    cookie.Store
	Streams    streamproxy.Factory
	UserAgent  string
}

type Resolver struct {
	http      HTTPDoer
	cookies   cookie.Store
	streams   streamproxy.Factory
	userAgent string
	log       *zap.SugaredLogger
	token     *sync_.Mutexed[cachedToken]
}

func New(opts Options) *Resolver {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Cookies == nil {
		opts.Cookies = cookie.NewMemoryStore()
	}
	if opts.Streams == nil {
		opts.Streams = streamproxy.NewManager("/api/stream")
	}
	if opts.UserAgent == "" {
		opts.UserAgent = cobalt.DefaultUserAgent
	}
	return &Resolver{
		http:      opts.HTTPClient,
		cookies:   opts.Cookies,
		streams:   opts.Streams,
		userAgent: opts.UserAgent,
		log:       zap.S().Named(Service),
		token:     sync_.NewMutexed(cachedToken{}),
	}
}

// Resolver adapts this package for registration with a ResolverRegistry.
func (r *Resolver) Resolver() cobalt.Resolver {
	return cobalt.Resolver{Name: Service, Match: r.Match}
}

func (r *Resolver) Match(req cobalt.Request) (cobalt.ResolveFunc, error) {
	switch {
	case req.PostID != "":
		return func(ctx context.Context, q cobalt.Request) (cobalt.Descriptor, error) {
			return r.Post(ctx, q.PostID)
		}, nil
	case req.Username != "" && req.StoryID != "":
		return func(ctx context.Context, q cobalt.Request) (cobalt.Descriptor, error) {
			return r.Story(ctx, q.Username, q.StoryID)
		}, nil
	}
	return nil, fmt.Errorf("no instagram identifiers in request")
}

func (r *Resolver) applyCommonHeaders(h http.Header) {
	h.Set("User-Agent", r.userAgent)
	h.Set("Sec-Gpc", "1")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("X-Ig-App-Id", embedAppID)
}
