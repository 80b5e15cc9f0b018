// Package youtube resolves video identifiers by negotiating codec family and
// quality against the rendition lists an external video-info provider yields.
package youtube

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/generic"
	"github.com/maxugly/cobalt/util"
)

const Service = "youtube"

const DefaultFormat = "h264"

// maxQuality stands in for a "max" quality request: higher than any real
// quality label, so the clamp always lands on the best available rendition.
const maxQuality = 9000

const provenanceMarker = "Provided to YouTube by"

// codecFamily groups a video codec tag with the audio codec tag it is paired
// with and the container the pair ships in.
type codecFamily struct {
	codec     string
	aCodec    string
	container string
}

var codecFamilies = map[string]codecFamily{
	"h264": {codec: "avc1", aCodec: "mp4a", container: "mp4"},
	"av1":  {codec: "av01", aCodec: "mp4a", container: "mp4"},
	"vp9":  {codec: "vp9", aCodec: "opus", container: "webm"},
}

// Formats are the codec family names a request may ask for.
var Formats = generic.NewSet("h264", "av1", "vp9")

type Options struct {
	Provider VideoInfoProvider
	Config   *cobalt.Config
}

type Resolver struct {
	provider VideoInfoProvider
	cfg      *cobalt.Config
	log      *zap.SugaredLogger
}

func New(opts Options) *Resolver {
	if opts.Provider == nil {
		opts.Provider = NewInnertubeProvider()
	}
	if opts.Config == nil {
		opts.Config = cobalt.NewConfig()
	}
	return &Resolver{
		provider: opts.Provider,
		cfg:      opts.Config,
		log:      zap.S().Named(Service),
	}
}

// Resolver adapts this package for registration with a ResolverRegistry.
func (r *Resolver) Resolver() cobalt.Resolver {
	return cobalt.Resolver{Name: Service, Match: r.Match}
}

func (r *Resolver) Match(req cobalt.Request) (cobalt.ResolveFunc, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("no video id in request")
	}
	if req.Format != "" && !Formats.Contains(req.Format) {
		return nil, fmt.Errorf("unknown codec family %q", req.Format)
	}
	return r.Video, nil
}

// Video fetches metadata for the id and walks the validation sequence: each
// failed check short-circuits with its own error kind before any stream URL
// is deciphered.
func (r *Resolver) Video(ctx context.Context, req cobalt.Request) (cobalt.Descriptor, error) {
	format := req.Format
	if format == "" {
		format = DefaultFormat
	}
	family, ok := codecFamilies[format]
	if !ok {
		return nil, cobalt.NewError(cobalt.ErrKindUnsupported)
	}

	requestedQuality := maxQuality
	if req.Quality != "" && req.Quality != "max" {
		if n, err := strconv.Atoi(req.Quality); err == nil && n > 0 {
			requestedQuality = n
		}
	}

	info, err := r.provider.GetBasicInfo(ctx, req.ID)
	if err != nil || info == nil {
		if err != nil {
			r.log.Debugw("video info fetch failed", "id", req.ID, "error", err)
		}
		return nil, cobalt.NewError(cobalt.ErrKindCantConnectToServiceAPI)
	}
	if info.Playability.Status != "OK" {
		return nil, cobalt.NewError(cobalt.ErrKindYTUnavailable)
	}
	if info.BasicInfo.IsLive {
		return nil, cobalt.NewError(cobalt.ErrKindLiveVideo)
	}
	// An id mismatch means upstream substituted an unavailability stub for
	// the requested video; retrying with another strategy cannot help.
	if info.BasicInfo.ID != req.ID {
		return nil, cobalt.NewCriticalError(cobalt.ErrKindCantConnectToServiceAPI)
	}

	adaptive := filterByFamily(info.Adaptive, family)

	var bestVideo, audio *StreamVariant
	hasAudio := false
	for i := range adaptive {
		v := &adaptive[i]
		if bestVideo == nil && v.HasVideo {
			bestVideo = v
		}
		if v.HasAudio {
			hasAudio = true
		}
		if audio == nil && v.HasAudio && !v.HasVideo && !v.IsDubbed {
			audio = v
		}
	}
	var bestQuality int
	if bestVideo != nil {
		if n, ok := qualityFromLabel(bestVideo.QualityLabel); ok {
			bestQuality = n
		} else {
			bestVideo = nil
		}
	}
	// Any audio-capable entry satisfies the gate here; a list whose only
	// audio tracks are dubbed can still be rescued by dub substitution.
	if (bestVideo == nil && !req.IsAudioOnly) || !hasAudio {
		return nil, cobalt.NewError(cobalt.ErrKindYTTryOtherCodec)
	}
	if info.BasicInfo.Duration > r.cfg.MaxVideoDuration {
		return nil, cobalt.NewErrorWithParams(cobalt.ErrKindLengthLimit, int(r.cfg.MaxVideoDuration.Minutes()))
	}

	isDubbed := false
	if req.DubLang != "" {
		for i := range adaptive {
			v := &adaptive[i]
			if v.HasAudio && !v.HasVideo && v.Language == req.DubLang && !v.IsDefaultAudioTrack {
				audio = v
				isDubbed = true
				break
			}
		}
	}

	meta := fileMetadata(info.BasicInfo)
	attrs := cobalt.FilenameAttributes{
		Service: Service,
		ID:      req.ID,
		Title:   meta.Title,
		Author:  meta.Artist,
	}
	if isDubbed {
		attrs.DubLang = req.DubLang
	}

	if req.IsAudioOnly {
		if audio == nil {
			return nil, cobalt.NewError(cobalt.ErrKindYTTryOtherCodec)
		}
		audioURL, err := r.decipher(ctx, audio)
		if err != nil {
			return nil, err
		}
		attrs.Format = format
		attrs.Extension = audioExtension(family)
		return cobalt.Single{
			URL:                audioURL,
			IsAudioOnly:        true,
			FilenameAttributes: &attrs,
			FileMetadata:       &meta,
		}, nil
	}

	// Requests above the ceiling are clamped to the best available, never
	// rejected.
	targetQuality := requestedQuality
	if bestQuality < targetQuality {
		targetQuality = bestQuality
	}

	if !req.IsAudioMuted && format == "h264" {
		for i := range info.Muxed {
			v := &info.Muxed[i]
			n, ok := qualityFromLabel(v.QualityLabel)
			if !ok || n != targetQuality || !strings.Contains(v.MimeType, family.codec) {
				continue
			}
			bridgeURL, err := r.decipher(ctx, v)
			if err != nil {
				return nil, err
			}
			applyVariantAttributes(&attrs, v, family, format)
			return cobalt.Bridge{URL: bridgeURL, FilenameAttributes: attrs, FileMetadata: meta}, nil
		}
	}

	if audio == nil {
		// Pairing a render needs a selected audio track; only the bridge
		// path above can do without one.
		return nil, cobalt.NewError(cobalt.ErrKindYTTryOtherCodec)
	}
	for i := range adaptive {
		v := &adaptive[i]
		if !v.HasVideo || v.HasAudio {
			continue
		}
		if n, ok := qualityFromLabel(v.QualityLabel); !ok || n != targetQuality {
			continue
		}
		videoURL, err := r.decipher(ctx, v)
		if err != nil {
			return nil, err
		}
		audioURL, err := r.decipher(ctx, audio)
		if err != nil {
			return nil, err
		}
		applyVariantAttributes(&attrs, v, family, format)
		return cobalt.Render{
			VideoURL:           videoURL,
			AudioURL:           audioURL,
			FilenameAttributes: attrs,
			FileMetadata:       meta,
		}, nil
	}

	return nil, cobalt.NewError(cobalt.ErrKindYTTryOtherCodec)
}

func (r *Resolver) decipher(ctx context.Context, v *StreamVariant) (string, error) {
	streamURL, err := v.Decipher(ctx)
	if err != nil {
		r.log.Debugw("stream url decipher failed", "error", err)
		return "", cobalt.NewError(cobalt.ErrKindCantConnectToServiceAPI)
	}
	return streamURL, nil
}

// filterByFamily keeps the variants whose media type names either the video
// or the audio codec tag of the family, ordered by descending bitrate.
func filterByFamily(variants []StreamVariant, family codecFamily) []StreamVariant {
	out := make([]StreamVariant, 0, len(variants))
	for _, v := range variants {
		if strings.Contains(v.MimeType, family.codec) || strings.Contains(v.MimeType, family.aCodec) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bitrate > out[j].Bitrate
	})
	return out
}

// qualityFromLabel parses the numeric part of a quality label, stopping at a
// progressive-scan or frame-rate suffix ("1080p", "720p60", "144s"). Labels
// that do not lead with digits are rejected rather than mis-sorted.
func qualityFromLabel(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	cut := label
	if i := strings.IndexAny(cut, "ps"); i >= 0 {
		cut = cut[:i]
	}
	n, err := strconv.Atoi(cut)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func fileMetadata(info BasicInfo) cobalt.FileMetadata {
	meta := cobalt.FileMetadata{
		Title:  util.CleanString(strings.TrimSpace(info.Title)),
		Artist: util.CleanString(strings.TrimSpace(strings.ReplaceAll(info.Author, "- Topic", ""))),
	}
	// Auto-generated music uploads carry album/copyright/release-date at
	// fixed paragraph positions in the description.
	if strings.HasPrefix(info.Description, provenanceMarker) {
		paragraphs := strings.Split(info.Description, "\n\n")
		if len(paragraphs) > 2 {
			meta.Album = paragraphs[2]
		}
		if len(paragraphs) > 3 {
			meta.Copyright = paragraphs[3]
		}
		if len(paragraphs) > 4 && strings.HasPrefix(paragraphs[4], "Released on:") {
			meta.Date = strings.TrimSpace(strings.TrimPrefix(paragraphs[4], "Released on:"))
		}
	}
	return meta
}

func applyVariantAttributes(attrs *cobalt.FilenameAttributes, v *StreamVariant, family codecFamily, format string) {
	attrs.QualityLabel = v.QualityLabel
	attrs.Resolution = fmt.Sprintf("%dx%d", v.Width, v.Height)
	attrs.Extension = family.container
	attrs.Format = format
}

func audioExtension(family codecFamily) string {
	if family.container == "webm" {
		return "opus"
	}
	return "m4a"
}
