package instagram

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxugly/cobalt"
)

const reelsResponseBody = `{"data":{"xdt_api__v1__feed__reels_media":{"reels_media":[` +
	`{"id":999,"items":[` +
	`{"pk":"111","video_versions":[` +
	`{"url":"https://cdn.example.com/s480.mp4","width":480,"height":854},` +
	`{"url":"https://cdn.example.com/s720.mp4","width":720,"height":1280}]},` +
	`{"pk":"222","image_versions2":{"candidates":[{"url":"https://cdn.example.com/s.jpg","width":720,"height":1280}]}}` +
	`]}]}}}`

func storyHandler(t *testing.T) func(req *http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Path, "/web_profile_info/"):
			require.Equal(t, "someuser", req.URL.Query().Get("username"))
			return headerResponse(200, `{"data":{"user":{"id":"999"}}}`,
				map[string]string{"X-Ig-Set-Www-Claim": "hmac.claim-1"}), nil
		case req.URL.Path == "/":
			return textResponse(200, landingPageHTML), nil
		case req.URL.Path == "/api/graphql/":
			return textResponse(200, reelsResponseBody), nil
		}
		t.Fatalf("unexpected request: %v", req.URL)
		return nil, nil
	}
}

func TestStoryWithoutSession(t *testing.T) {
	doer := &fakeDoer{handler: func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no network call expected, got %v", req.URL)
		return nil, nil
	}}
	r := newTestResolver(doer)

	_, err := r.Story(context.Background(), "someuser", "111")
	resErr, ok := cobalt.AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, cobalt.ErrKindUnsupported, resErr.Kind)
	assert.Empty(t, doer.requests)
}

func TestStoryVideo(t *testing.T) {
	doer := &fakeDoer{handler: storyHandler(t)}
	r := newTestResolver(doer, testSession("csrftoken=tok; sessionid=sid"))

	desc, err := r.Story(context.Background(), "someuser", "111")
	require.NoError(t, err)
	single, ok := desc.(cobalt.Single)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/s720.mp4", single.URL)
	assert.Equal(t, "instagram_111.mp4", single.Filename)
	assert.Equal(t, "instagram_111_audio", single.AudioFilename)
}

func TestStoryPhoto(t *testing.T) {
	doer := &fakeDoer{handler: storyHandler(t)}
	r := newTestResolver(doer, testSession("csrftoken=tok; sessionid=sid"))

	desc, err := r.Story(context.Background(), "someuser", "222")
	require.NoError(t, err)
	single, ok := desc.(cobalt.Single)
	require.True(t, ok)
	assert.True(t, single.IsPhoto)
	assert.Equal(t, "https://cdn.example.com/s.jpg", single.URL)
}

func TestStoryItemMissing(t *testing.T) {
	doer := &fakeDoer{handler: storyHandler(t)}
	r := newTestResolver(doer, testSession("csrftoken=tok; sessionid=sid"))

	_, err := r.Story(context.Background(), "someuser", "404")
	resErr, ok := cobalt.AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, cobalt.ErrKindEmptyDownload, resErr.Kind)
}

func TestStoryUnknownUser(t *testing.T) {
	doer := &fakeDoer{handler: func(req *http.Request) (*http.Response, error) {
		return textResponse(200, `{"data":{"user":null}}`), nil
	}}
	r := newTestResolver(doer, testSession("sessionid=sid"))

	_, err := r.Story(context.Background(), "ghost", "111")
	resErr, ok := cobalt.AsResolutionError(err)
	require.True(t, ok)
	assert.Equal(t, cobalt.ErrKindEmptyDownload, resErr.Kind)
}

func TestStoryClaimWriteBack(t *testing.T) {
	doer := &fakeDoer{handler: storyHandler(t)}
	sess := testSession("csrftoken=tok; sessionid=sid")
	r := newTestResolver(doer, sess)

	_, err := r.Story(context.Background(), "someuser", "111")
	require.NoError(t, err)

	// The claim issued on the profile response must be echoed on the
	// subsequent GraphQL request.
	assert.Equal(t, "hmac.claim-1", sess.WWWClaim())
	var graphqlReq *http.Request
	for _, req := range doer.requests {
		if req.URL.Path == "/api/graphql/" {
			graphqlReq = req
		}
	}
	require.NotNil(t, graphqlReq)
	assert.Equal(t, "hmac.claim-1", graphqlReq.Header.Get("X-Ig-Www-Claim"))
}
