package cobalt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/maxugly/cobalt/util"
)

type Download interface {
	// AddDownloadedBytes increases how many bytes have been successfully downloaded so far.
	AddDownloadedBytes(n int)

	// AddExpectedBytes increases how many bytes are expected to be downloaded.
	AddExpectedBytes(n int)

	// Cancel the Download, stopping any in-progress I/O activity.
	Cancel()

	// Close cleans up any resources associated with the Download.
	Close() error

	// Context is the cancellable context of this Download.
	Context() context.Context

	CreateFile(filename string) (io.WriteCloser, error)

	// Progress returns the downloaded and expected bytes of the download.
	Progress() (int, int)

	// SaveDescriptor fetches every stream a resolved Descriptor points at,
	// naming output files from the descriptor's attributes via the Config.
	SaveDescriptor(cfg *Config, desc Descriptor) error

	// SaveHTTPRequest will execute the http.Request with Context() and then download the resulting stream like SaveStream.
	SaveHTTPRequest(filename string, req *http.Request) error

	// SaveStream will download the stream to the named file, calling AddDownloadedBytes as necessary.
	SaveStream(filename string, stream io.Reader) error

	// SaveURL will make a GET request to the URL and then download the resulting stream like SaveStream.
	SaveURL(filename string, url string) error

	// Write will ignore the data but will send the byte count to AddDownloadedBytes. Allows progress tracking using
	// io.MultiWriter (but ensure the Download is the last writer to avoid counting failed writes).
	Write(p []byte) (n int, err error)
}

type download struct {
	ctx              context.Context
	cancel           context.CancelFunc
	progressCallback func(int, int)
	targetPrefix     string
	expectedBytes    int
	downloadedBytes  int
}

func (d *download) AddDownloadedBytes(n int) {
	d.downloadedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) AddExpectedBytes(n int) {
	d.expectedBytes += n
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

func (d *download) Cancel() {
	d.cancel()
}

func (d *download) Close() error {
	return nil
}

func (d *download) Context() context.Context {
	return d.ctx
}

func (d *download) CreateFile(filename string) (io.WriteCloser, error) {
	targetPath := d.targetPath(filename)
	targetDir := path.Dir(targetPath)
	if err := os.MkdirAll(targetDir, 0775); err != nil {
		return nil, err
	}
	return os.Create(targetPath)
}

func (d *download) Progress() (int, int) {
	return d.downloadedBytes, d.expectedBytes
}

func (d *download) SaveDescriptor(cfg *Config, desc Descriptor) error {
	switch v := desc.(type) {
	case Single:
		filename := v.Filename
		if filename == "" && v.FilenameAttributes != nil {
			if rendered, err := cfg.OutputFilename(*v.FilenameAttributes); err == nil {
				filename = rendered
			}
		}
		if filename == "" {
			filename = util.FilenameOrDefault(v.URL, "media")
		}
		return d.SaveURL(filename, v.URL)
	case Bridge:
		filename, err := cfg.OutputFilename(v.FilenameAttributes)
		if err != nil {
			return err
		}
		return d.SaveURL(filename, v.URL)
	case Render:
		filename, err := cfg.OutputFilename(v.FilenameAttributes)
		if err != nil {
			return err
		}
		if err := d.SaveURL(filename, v.VideoURL); err != nil {
			return err
		}
		return d.SaveURL(audioFilename(filename, v.FilenameAttributes), v.AudioURL)
	case Picker:
		for i, item := range v.Items {
			ext := ".jpg"
			if item.Type == PickerVideo {
				ext = ".mp4"
			}
			if err := d.SaveURL(fmt.Sprintf("picker_%02d%s", i+1, ext), item.URL); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot download descriptor of kind %q", desc.Kind())
	}
}

func (d *download) SaveHTTPRequest(filename string, req *http.Request) error {
	if req == nil {
		return fmt.Errorf("nil request")
	}
	req = req.WithContext(d.Context())
	client := http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	d.AddExpectedBytes(int(resp.ContentLength))
	return d.SaveStream(filename, resp.Body)
}

func (d *download) SaveStream(filename string, stream io.Reader) error {
	f, err := d.CreateFile(filename)
	if err != nil {
		return fmt.Errorf("failed to open target file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(io.MultiWriter(f, d), &readerContext{ctx: d.ctx, r: stream})
	if err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}
	return nil
}

func (d *download) SaveURL(filename string, url string) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return d.SaveHTTPRequest(filename, req)
}

func (d *download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.AddDownloadedBytes(n)
	return n, nil
}

func (d *download) targetPath(filename string) string {
	targetPathBuilder := strings.Builder{}
	targetPathBuilder.WriteString(d.targetPrefix)
	targetPathBuilder.WriteString(filename)
	return targetPathBuilder.String()
}

// audioFilename derives the companion audio track filename for a Render
// pair, e.g. "youtube_x_1280x720.mp4" -> "youtube_x_1280x720_audio.m4a".
func audioFilename(videoFilename string, attrs FilenameAttributes) string {
	base := strings.TrimSuffix(videoFilename, path.Ext(videoFilename))
	ext := "m4a"
	if attrs.Extension == "webm" {
		ext = "opus"
	}
	return fmt.Sprintf("%s_audio.%s", base, ext)
}

type DownloadBuilder interface {
	Build() (Download, error)
	WithContext(ctx context.Context) DownloadBuilder
	WithProgressCallback(f func(downloaded int, expected int)) DownloadBuilder
	WithTargetPrefix(prefix string) DownloadBuilder
}

type downloadBuilder struct {
	ctx              context.Context
	progressCallback func(int, int)
	targetPrefix     string
}

func NewDownloadBuilder() DownloadBuilder {
	return &downloadBuilder{
		ctx:          context.Background(),
		targetPrefix: "./",
	}
}

func (b *downloadBuilder) Build() (Download, error) {
	d := download{}
	d.ctx, d.cancel = context.WithCancel(b.ctx)
	d.progressCallback = b.progressCallback
	d.targetPrefix = b.targetPrefix
	return &d, nil
}

func (b *downloadBuilder) WithContext(ctx context.Context) DownloadBuilder {
	b.ctx = ctx
	return b
}

func (b *downloadBuilder) WithProgressCallback(f func(int, int)) DownloadBuilder {
	b.progressCallback = f
	return b
}

func (b *downloadBuilder) WithTargetPrefix(prefix string) DownloadBuilder {
	b.targetPrefix = prefix
	return b
}
