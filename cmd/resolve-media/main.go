package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/async"
	"github.com/maxugly/cobalt/database"
	"github.com/maxugly/cobalt/generic"
	"github.com/maxugly/cobalt/internal/boltdb"
	"github.com/maxugly/cobalt/resolvers"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = cobalt.WithLogger(ctx, logger)

	app := &cli.App{
		Name:  "resolve-media",
		Usage: "resolve a media identifier into downloadable stream URLs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "post",
				Usage: "resolve an instagram post `ID`",
			},
			&cli.StringFlag{
				Name:  "story",
				Usage: "resolve an instagram story item `ID` (requires --user)",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "instagram `USERNAME` owning the story",
			},
			&cli.StringFlag{
				Name:  "video",
				Usage: "resolve a youtube video `ID`",
			},
			&cli.StringFlag{
				Name:  "quality",
				Value: "max",
				Usage: "requested video quality (numeric label or \"max\")",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "h264",
				Usage: "codec family: h264, av1 or vp9",
			},
			&cli.BoolFlag{
				Name:  "audio-only",
				Usage: "resolve only the audio track",
			},
			&cli.BoolFlag{
				Name:  "mute-audio",
				Usage: "resolve video without audio",
			},
			&cli.StringFlag{
				Name:  "dub",
				Usage: "preferred dubbed audio `LANG` tag",
			},
			&cli.StringFlag{
				Name:  "cookie-db",
				Usage: "load platform sessions from the SQLite database at `PATH`",
			},
			&cli.StringFlag{
				Name:  "cookie-bolt",
				Usage: "load platform sessions from the bbolt database at `PATH`",
			},
			&cli.BoolFlag{
				Name:  "download",
				Usage: "download the resolved streams",
			},
			&cli.StringFlag{
				Name:  "target",
				Value: ".",
				Usage: "save downloaded files to `DIR`",
			},
		},
		Action: func(c *cli.Context) error {
			return resolve(ctx, c)
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		logger.Error(ctx.Err().Error())
		stop()
	}
}

func resolve(ctx context.Context, c *cli.Context) error {
	logger := cobalt.Logger(ctx).Sugar()

	req := cobalt.Request{
		PostID:       c.String("post"),
		StoryID:      c.String("story"),
		Username:     c.String("user"),
		ID:           c.String("video"),
		Quality:      c.String("quality"),
		Format:       c.String("format"),
		IsAudioOnly:  c.Bool("audio-only"),
		IsAudioMuted: c.Bool("mute-audio"),
		DubLang:      c.String("dub"),
	}

	cfg := cobalt.NewConfig()
	opts := resolvers.Options{Config: cfg}
	switch sqlPath, boltPath := c.String("cookie-db"), c.String("cookie-bolt"); {
	case sqlPath != "" && boltPath != "":
		return fmt.Errorf("--cookie-db and --cookie-bolt are mutually exclusive")
	case sqlPath != "":
		store, err := database.NewCookieStore(sqlPath, cobalt.Logger(ctx))
		if err != nil {
			return fmt.Errorf("failed to open cookie database: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate cookie database: %w", err)
		}
		opts.Cookies = store
	case boltPath != "":
		store, err := boltdb.New(boltPath)
		if err != nil {
			return fmt.Errorf("failed to open cookie database: %w", err)
		}
		defer store.Close()
		opts.Cookies = store
	}

	var reg cobalt.ResolverRegistry
	if err := resolvers.Register(&reg, opts); err != nil {
		return err
	}

	desc, err := reg.Resolve(ctx, req)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	out := struct {
		Kind  cobalt.DescriptorKind `json:"kind"`
		Media cobalt.Descriptor     `json:"media"`
	}{desc.Kind(), desc}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if !c.Bool("download") {
		return nil
	}

	logger.Info("Starting download...")
	bar := progressbar.DefaultBytes(1, "downloading")
	downloadBuilder := cobalt.NewDownloadBuilder()
	downloadBuilder.WithContext(ctx)
	downloadBuilder.WithProgressCallback(func(downloaded int, expected int) {
		if bar.GetMax() != expected {
			bar.ChangeMax(expected)
		}
		generic.Unwrap_(bar.Set(downloaded))
	})
	downloadBuilder.WithTargetPrefix(strings.TrimRight(c.String("target"), "/") + "/")
	download := generic.Unwrap(downloadBuilder.Build())
	defer download.Close()

	if err := download.SaveDescriptor(cfg, desc); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	logger.Info("Download complete!")
	return nil
}
