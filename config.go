package cobalt

import (
	"strings"
	"text/template"
	"time"
)

const (
	// DefaultMaxVideoDuration is the longest streaming video the resolver
	// will accept.
	DefaultMaxVideoDuration = 3 * time.Hour
	// DefaultUserAgent is sent on platform requests that do not need to
	// impersonate a full browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	defaultFilenameTemplate = "{{.Service}}_{{.ID}}{{if .Resolution}}_{{.Resolution}}{{end}}{{if .DubLang}}_{{.DubLang}}{{end}}.{{.Extension}}"
)

// Config carries the subsystem-level tunables: the maximum accepted video
// duration, the outbound user agent, and the template output filenames are
// rendered from.
type Config struct {
	MaxVideoDuration time.Duration
	GenericUserAgent string
	filenameTemplate *template.Template
}

func NewConfig() *Config {
	return &Config{
		MaxVideoDuration: DefaultMaxVideoDuration,
		GenericUserAgent: DefaultUserAgent,
		filenameTemplate: template.Must(template.New("output_file").Parse(defaultFilenameTemplate)),
	}
}

func (c *Config) WithMaxVideoDuration(d time.Duration) *Config {
	c.MaxVideoDuration = d
	return c
}

// WithFilenameTemplate replaces the output filename template; the template is
// executed against a FilenameAttributes value.
func (c *Config) WithFilenameTemplate(t string) *Config {
	c.filenameTemplate = template.Must(template.New("output_file").Parse(t))
	return c
}

// OutputFilename renders the output filename for a resolved descriptor's
// attributes.
func (c *Config) OutputFilename(attrs FilenameAttributes) (string, error) {
	builder := strings.Builder{}
	if err := c.filenameTemplate.Execute(&builder, &attrs); err != nil {
		return "", err
	}
	return builder.String(), nil
}
