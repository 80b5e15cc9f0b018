package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/internal/cookie"
)

// Story resolves one item of a user's active stories. There is no anonymous
// path for stories: without a session this fails before any network access.
func (r *Resolver) Story(ctx context.Context, username string, storyID string) (cobalt.Descriptor, error) {
	sess := r.cookies.Get(Service)
	if sess == nil {
		return nil, cobalt.NewError(cobalt.ErrKindUnsupported)
	}
	log := r.log.With("username", username, "story", storyID)

	userID, err := r.usernameToID(ctx, username, sess)
	if err != nil || userID == "" {
		if err != nil {
			log.Debugw("profile lookup failed", "error", err)
		}
		return nil, cobalt.NewError(cobalt.ErrKindEmptyDownload)
	}

	item, err := r.fetchStoryItem(ctx, sess, userID, storyID)
	if err != nil {
		log.Debugw("story lookup failed", "error", err)
		return nil, cobalt.NewError(cobalt.ErrKindEmptyDownload)
	}
	if item == nil {
		return nil, cobalt.NewError(cobalt.ErrKindEmptyDownload)
	}

	if len(item.VideoVersions) > 0 {
		return cobalt.Single{
			URL:           bestVideoVersion(item.VideoVersions).URL,
			Filename:      postFilename(storyID),
			AudioFilename: postAudioFilename(storyID),
		}, nil
	}
	if len(item.ImageVersions.Candidates) > 0 {
		return cobalt.Single{URL: item.ImageVersions.Candidates[0].URL, IsPhoto: true}, nil
	}
	return nil, cobalt.NewError(cobalt.ErrKindCouldntFetch)
}

func (r *Resolver) usernameToID(ctx context.Context, username string, sess *cookie.Session) (string, error) {
	profileURL := baseURL + "/api/v1/users/web_profile_info/?username=" + url.QueryEscape(username)
	var payload struct {
		Data struct {
			User *struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := r.requestJSON(ctx, profileURL, sess, http.MethodGet, nil, &payload); err != nil {
		return "", err
	}
	if payload.Data.User == nil {
		return "", nil
	}
	return payload.Data.User.ID, nil
}

// fetchStoryItem queries the reels-media GraphQL document for a single user
// id and picks out the reel for that user, then the item for the story id.
// (nil, nil) means the query succeeded but the item is not there.
func (r *Resolver) fetchStoryItem(ctx context.Context, sess *cookie.Session, userID string, storyID string) (*mediaItem, error) {
	variables, err := json.Marshal(map[string]any{
		"reel_ids_arr": []string{userID},
	})
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("jazoest", storyJazoest)
	form.Set("variables", string(variables))
	form.Set("server_timestamps", "true")
	form.Set("doc_id", storyDocID)
	if token := r.findToken(ctx, sess); token.IsSome() {
		form.Set("fb_dtsg", token.Unwrap())
	}

	var payload reelsResponse
	if err := r.requestJSON(ctx, graphQLURL, sess, http.MethodPost, form, &payload); err != nil {
		return nil, err
	}

	for _, media := range payload.Data.FeedReelsMedia.ReelsMedia {
		if string(media.ID) != userID {
			continue
		}
		for i := range media.Items {
			if string(media.Items[i].PK) == storyID {
				return &media.Items[i], nil
			}
		}
	}
	return nil, nil
}
