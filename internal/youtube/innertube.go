package youtube

import (
	"context"
	"errors"
	"strings"

	kkdai "github.com/kkdai/youtube/v2"
)

// innertubeProvider implements VideoInfoProvider on top of the kkdai client.
type innertubeProvider struct {
	client kkdai.Client
}

func NewInnertubeProvider() VideoInfoProvider {
	return &innertubeProvider{}
}

func (p *innertubeProvider) GetBasicInfo(ctx context.Context, id string) (*VideoInfo, error) {
	video, err := p.client.GetVideoContext(ctx, id)
	if err != nil {
		var status *kkdai.ErrPlayabiltyStatus
		if errors.As(err, &status) {
			return &VideoInfo{Playability: Playability{Status: status.Status, Reason: status.Reason}}, nil
		}
		return nil, err
	}

	info := &VideoInfo{
		Playability: Playability{Status: "OK"},
		BasicInfo: BasicInfo{
			ID:          video.ID,
			Title:       video.Title,
			Author:      video.Author,
			Description: video.Description,
			Duration:    video.Duration,
			IsLive:      video.HLSManifestURL != "",
		},
	}
	for i := range video.Formats {
		format := video.Formats[i]
		variant := StreamVariant{
			MimeType:     format.MimeType,
			Bitrate:      format.Bitrate,
			Width:        format.Width,
			Height:       format.Height,
			QualityLabel: format.QualityLabel,
			HasVideo:     format.QualityLabel != "",
			HasAudio:     format.AudioChannels > 0,
			Decipher: func(ctx context.Context) (string, error) {
				return p.client.GetStreamURLContext(ctx, video, &format)
			},
		}
		if format.AudioTrack != nil {
			variant.Language = languageTag(format.AudioTrack.ID)
			variant.IsDefaultAudioTrack = format.AudioTrack.AudioIsDefault
			variant.IsDubbed = !format.AudioTrack.AudioIsDefault
		} else {
			variant.IsDefaultAudioTrack = variant.HasAudio
		}
		if variant.HasVideo && variant.HasAudio {
			info.Muxed = append(info.Muxed, variant)
		} else {
			info.Adaptive = append(info.Adaptive, variant)
		}
	}
	return info, nil
}

// languageTag extracts the language portion of an audio track id, which is
// formatted as "<lang>.<numeric suffix>".
func languageTag(trackID string) string {
	if i := strings.IndexByte(trackID, '.'); i >= 0 {
		return trackID[:i]
	}
	return trackID
}
