package youtube

import (
	"context"
	"time"
)

// Playability mirrors the upstream playability verdict for a video.
type Playability struct {
	Status string
	Reason string
}

// BasicInfo is the per-video metadata the resolver negotiates against.
type BasicInfo struct {
	ID          string
	Title       string
	Author      string
	Description string
	Duration    time.Duration
	IsLive      bool
}

// A StreamVariant is one rendition of a video. Muxed variants carry both
// audio and video; adaptive variants carry exactly one of the two.
type StreamVariant struct {
	MimeType     string
	Bitrate      int
	Width        int
	Height       int
	QualityLabel string
	HasVideo     bool
	HasAudio     bool

	// Audio track properties; zero values for video-only variants.
	Language            string
	IsDubbed            bool
	IsDefaultAudioTrack bool

	// Decipher resolves the variant into a directly fetchable URL. The
	// URL is short-lived and must be resolved per call, not cached.
	Decipher func(ctx context.Context) (string, error)
}

// VideoInfo is everything a single metadata fetch yields.
type VideoInfo struct {
	Playability Playability
	BasicInfo   BasicInfo
	Muxed       []StreamVariant
	Adaptive    []StreamVariant
}

// VideoInfoProvider is the external extraction capability the resolver
// depends on. A playability rejection is reported as a VideoInfo with a
// non-OK status, not as an error; errors mean the provider itself failed.
type VideoInfoProvider interface {
	GetBasicInfo(ctx context.Context, id string) (*VideoInfo, error)
}
