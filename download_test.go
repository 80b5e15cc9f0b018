package cobalt

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes-for-" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDownload(t *testing.T) (Download, string) {
	t.Helper()
	dir := t.TempDir()
	d, err := NewDownloadBuilder().WithTargetPrefix(dir + "/").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, dir
}

func readTestFile(t *testing.T, dir string, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestSaveDescriptorSingle(t *testing.T) {
	srv := testFileServer(t)
	d, dir := newTestDownload(t)

	err := d.SaveDescriptor(NewConfig(), Single{URL: srv.URL + "/v.mp4", Filename: "instagram_x.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "bytes-for-/v.mp4", readTestFile(t, dir, "instagram_x.mp4"))
}

func TestSaveDescriptorRender(t *testing.T) {
	srv := testFileServer(t)
	d, dir := newTestDownload(t)

	err := d.SaveDescriptor(NewConfig(), Render{
		VideoURL: srv.URL + "/video",
		AudioURL: srv.URL + "/audio",
		FilenameAttributes: FilenameAttributes{
			Service: "youtube", ID: "abc", Resolution: "1280x720", Extension: "mp4",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "bytes-for-/video", readTestFile(t, dir, "youtube_abc_1280x720.mp4"))
	assert.Equal(t, "bytes-for-/audio", readTestFile(t, dir, "youtube_abc_1280x720_audio.m4a"))
}

func TestSaveDescriptorPicker(t *testing.T) {
	srv := testFileServer(t)
	d, dir := newTestDownload(t)

	err := d.SaveDescriptor(NewConfig(), Picker{Items: []PickerItem{
		{Type: PickerVideo, URL: srv.URL + "/1.mp4"},
		{Type: PickerPhoto, URL: srv.URL + "/2.jpg"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "bytes-for-/1.mp4", readTestFile(t, dir, "picker_01.mp4"))
	assert.Equal(t, "bytes-for-/2.jpg", readTestFile(t, dir, "picker_02.jpg"))
}

func TestDownloadProgress(t *testing.T) {
	srv := testFileServer(t)

	var lastDownloaded int
	d, err := NewDownloadBuilder().
		WithTargetPrefix(t.TempDir() + "/").
		WithProgressCallback(func(downloaded int, expected int) { lastDownloaded = downloaded }).
		Build()
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.SaveURL("file.bin", srv.URL+"/file.bin"))
	downloaded, expected := d.Progress()
	assert.Equal(t, len("bytes-for-/file.bin"), downloaded)
	assert.Equal(t, downloaded, expected)
	assert.Equal(t, downloaded, lastDownloaded)
}
