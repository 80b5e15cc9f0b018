package cobalt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFilenameDefaults(t *testing.T) {
	cfg := NewConfig()

	name, err := cfg.OutputFilename(FilenameAttributes{
		Service: "youtube", ID: "abc", Resolution: "1280x720", Extension: "mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "youtube_abc_1280x720.mp4", name)

	name, err = cfg.OutputFilename(FilenameAttributes{
		Service: "youtube", ID: "abc", Resolution: "1280x720", Extension: "mp4", DubLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, "youtube_abc_1280x720_es.mp4", name)

	name, err = cfg.OutputFilename(FilenameAttributes{Service: "youtube", ID: "abc", Extension: "m4a"})
	require.NoError(t, err)
	assert.Equal(t, "youtube_abc.m4a", name)
}

func TestOutputFilenameCustomTemplate(t *testing.T) {
	cfg := NewConfig().WithFilenameTemplate("{{.Title}} [{{.ID}}].{{.Extension}}")

	name, err := cfg.OutputFilename(FilenameAttributes{Title: "Some Video", ID: "abc", Extension: "mp4"})
	require.NoError(t, err)
	assert.Equal(t, "Some Video [abc].mp4", name)
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, 3*time.Hour, cfg.MaxVideoDuration)
	assert.NotEmpty(t, cfg.GenericUserAgent)

	cfg.WithMaxVideoDuration(30 * time.Minute)
	assert.Equal(t, 30*time.Minute, cfg.MaxVideoDuration)
}
