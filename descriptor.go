package cobalt

// DescriptorKind discriminates the MediaDescriptor union.
type DescriptorKind string

const (
	KindSingle DescriptorKind = "single"
	KindBridge DescriptorKind = "bridge"
	KindRender DescriptorKind = "render"
	KindPicker DescriptorKind = "picker"
)

// A Descriptor is the successful output of a resolution call: one of Single,
// Bridge, Render or Picker. Descriptors are plain values created fresh per
// call; they carry no identity or lifecycle of their own.
type Descriptor interface {
	Kind() DescriptorKind
}

// Single describes one downloadable file. AudioFilename, when set, hints the
// name for a companion audio track that the caller may extract or discard.
type Single struct {
	URL           string
	Filename      string
	IsPhoto       bool
	IsAudioOnly   bool
	AudioFilename string

	// Populated by the streaming resolver's audio-only path only.
	FilenameAttributes *FilenameAttributes
	FileMetadata       *FileMetadata
}

func (Single) Kind() DescriptorKind { return KindSingle }

// Bridge describes one URL that already contains muxed audio and video.
type Bridge struct {
	URL                string
	FilenameAttributes FilenameAttributes
	FileMetadata       FileMetadata
}

func (Bridge) Kind() DescriptorKind { return KindBridge }

// Render describes an ordered (video, audio) pair requiring external muxing.
type Render struct {
	VideoURL           string
	AudioURL           string
	FilenameAttributes FilenameAttributes
	FileMetadata       FileMetadata
}

func (Render) Kind() DescriptorKind { return KindRender }

type PickerItemType string

const (
	PickerVideo PickerItemType = "video"
	PickerPhoto PickerItemType = "photo"
)

// A PickerItem is one independently selectable entry of a carousel.
type PickerItem struct {
	Type      PickerItemType
	URL       string
	Thumbnail string
}

// Picker is a multi-item result; the caller lets the end user choose.
type Picker struct {
	Items []PickerItem
}

func (Picker) Kind() DescriptorKind { return KindPicker }
