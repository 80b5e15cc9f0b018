package cobalt

// FilenameAttributes are the descriptive fields an output filename is built
// from. Purely informational; no field is required to be set.
type FilenameAttributes struct {
	Service      string
	ID           string
	Title        string
	Author       string
	QualityLabel string
	Resolution   string
	Extension    string
	Format       string
	// DubLang is the requested dub language tag, set only when a dubbed
	// audio track was actually substituted.
	DubLang string
}

// FileMetadata is container-level metadata for the produced file.
type FileMetadata struct {
	Title     string
	Artist    string
	Album     string
	Copyright string
	Date      string
}
