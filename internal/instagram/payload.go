package instagram

import (
	"bytes"
	"encoding/json"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/internal/streamproxy"
)

// stringID tolerates upstream fields that arrive as either a JSON string or a
// bare number, depending on payload vintage.
type stringID string

func (s *stringID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = stringID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = stringID(num.String())
	return nil
}

// legacyPayload is the embed-page shape (fetch tiers 1 and 2).
type legacyPayload struct {
	GQLData struct {
		ShortcodeMedia *struct {
			EdgeSidecarToChildren *struct {
				Edges []struct {
					Node struct {
						DisplayURL string `json:"display_url"`
						IsVideo    bool   `json:"is_video"`
						VideoURL   string `json:"video_url"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_sidecar_to_children"`
			VideoURL   string `json:"video_url"`
			DisplayURL string `json:"display_url"`
		} `json:"shortcode_media"`
	} `json:"gql_data"`
}

// mediaItem is the modern GraphQL shape (fetch tier 3 and stories).
type mediaItem struct {
	PK            stringID       `json:"pk"`
	CarouselMedia []mediaItem    `json:"carousel_media"`
	VideoVersions []videoVersion `json:"video_versions"`
	ImageVersions struct {
		Candidates []imageCandidate `json:"candidates"`
	} `json:"image_versions2"`
}

type videoVersion struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type imageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type graphQLMediaResponse struct {
	Data struct {
		WebInfo struct {
			Items []mediaItem `json:"items"`
		} `json:"xdt_api__v1__media__shortcode__web_info"`
	} `json:"data"`
}

type reelsResponse struct {
	Data struct {
		FeedReelsMedia struct {
			ReelsMedia []reel `json:"reels_media"`
		} `json:"xdt_api__v1__feed__reels_media"`
	} `json:"data"`
}

type reel struct {
	ID    stringID    `json:"id"`
	Items []mediaItem `json:"items"`
}

// bestVideoVersion picks the highest-resolution variant by pixel area. Equal
// areas resolve toward the later candidate; upstream does not document which
// of equal-area variants is preferable, so this is implementation-defined.
func bestVideoVersion(versions []videoVersion) videoVersion {
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Width*v.Height >= best.Width*best.Height {
			best = v
		}
	}
	return best
}

func postFilename(id string) string {
	return "instagram_" + id + ".mp4"
}

func postAudioFilename(id string) string {
	return "instagram_" + id + "_audio"
}

// extractLegacyPost maps the embed-page shape onto a descriptor. The second
// return value is false when the payload holds nothing usable.
func extractLegacyPost(data *legacyPayload, id string, streams streamproxy.Factory) (cobalt.Descriptor, bool) {
	media := data.GQLData.ShortcodeMedia
	if media == nil {
		return nil, false
	}

	if sidecar := media.EdgeSidecarToChildren; sidecar != nil {
		var items []cobalt.PickerItem
		for _, edge := range sidecar.Edges {
			node := edge.Node
			if node.DisplayURL == "" {
				continue
			}
			item := cobalt.PickerItem{Type: cobalt.PickerPhoto, URL: node.DisplayURL}
			if node.IsVideo {
				item.Type = cobalt.PickerVideo
				item.URL = node.VideoURL
			}
			// Thumbnails have `Cross-Origin-Resource-Policy` set to
			// `same-origin`, so we need to proxy them.
			item.Thumbnail = streams.CreateProxyReference(Service, node.DisplayURL, "image.jpg")
			items = append(items, item)
		}
		if len(items) > 0 {
			return cobalt.Picker{Items: items}, true
		}
		return nil, false
	}

	if media.VideoURL != "" {
		return cobalt.Single{
			URL:           media.VideoURL,
			Filename:      postFilename(id),
			AudioFilename: postAudioFilename(id),
		}, true
	}
	if media.DisplayURL != "" {
		return cobalt.Single{URL: media.DisplayURL, IsPhoto: true}, true
	}
	return nil, false
}

// extractModernPost maps the GraphQL shape onto a descriptor. Unlike the
// legacy shape, video entries carry a rendition list, so the
// highest-resolution variant is selected per item.
func extractModernPost(data *mediaItem, id string, streams streamproxy.Factory) (cobalt.Descriptor, bool) {
	if len(data.CarouselMedia) > 0 {
		var items []cobalt.PickerItem
		for _, media := range data.CarouselMedia {
			if len(media.ImageVersions.Candidates) == 0 {
				continue
			}
			imageURL := media.ImageVersions.Candidates[0].URL
			item := cobalt.PickerItem{Type: cobalt.PickerPhoto, URL: imageURL}
			if len(media.VideoVersions) > 0 {
				item.Type = cobalt.PickerVideo
				item.URL = bestVideoVersion(media.VideoVersions).URL
			}
			item.Thumbnail = streams.CreateProxyReference(Service, imageURL, "image.jpg")
			items = append(items, item)
		}
		if len(items) > 0 {
			return cobalt.Picker{Items: items}, true
		}
		return nil, false
	}

	if len(data.VideoVersions) > 0 {
		return cobalt.Single{
			URL:           bestVideoVersion(data.VideoVersions).URL,
			Filename:      postFilename(id),
			AudioFilename: postAudioFilename(id),
		}, true
	}
	if len(data.ImageVersions.Candidates) > 0 {
		return cobalt.Single{URL: data.ImageVersions.Candidates[0].URL, IsPhoto: true}, true
	}
	return nil, false
}
