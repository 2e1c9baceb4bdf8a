package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mhang/tilemark/internal/app"
	"github.com/mhang/tilemark/internal/config"
	"github.com/mhang/tilemark/internal/media"
	"github.com/mhang/tilemark/internal/watermark"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: tilemark <command> [flags]

commands:
  image   watermark a still image
  video   watermark a video
  serve   run the HTTP job service

run 'tilemark <command> -h' for command flags
`)
}

func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "image":
		err = runImage(ctx, cfg, os.Args[2:])
	case "video":
		err = runVideo(ctx, cfg, os.Args[2:])
	case "serve":
		err = app.Run(ctx, cfg)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type markFlags struct {
	in   string
	out  string
	text string
	size int
}

func parseMarkFlags(name string, args []string) (*markFlags, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	f := &markFlags{}
	fs.StringVar(&f.in, "in", "", "input file path")
	fs.StringVar(&f.out, "out", "", "output file path")
	fs.StringVar(&f.text, "text", "", "watermark text")
	fs.IntVar(&f.size, "size", watermark.DefaultFontSize, "font size in points")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.in == "" || f.out == "" || f.text == "" {
		return nil, fmt.Errorf("%s: -in, -out and -text are required", name)
	}
	if f.size <= 0 {
		return nil, fmt.Errorf("%s: -size must be positive", name)
	}
	return f, nil
}

func newPipeline(cfg *config.Config) (*watermark.Pipeline, error) {
	media.FFmpegPath = cfg.FFmpegPath
	media.FFprobePath = cfg.FFprobePath
	fonts, err := watermark.NewFontProvisioner(cfg.FontPath)
	if err != nil {
		return nil, err
	}
	return watermark.NewPipeline(fonts), nil
}

func runImage(ctx context.Context, cfg *config.Config, args []string) error {
	f, err := parseMarkFlags("image", args)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	if err := p.WatermarkImage(ctx, f.in, f.out, watermark.NewSpec(f.text, f.size)); err != nil {
		return err
	}
	slog.Info("image watermarked", "in", f.in, "out", f.out)
	return nil
}

func runVideo(ctx context.Context, cfg *config.Config, args []string) error {
	f, err := parseMarkFlags("video", args)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	if err := p.WatermarkVideo(ctx, f.in, f.out, watermark.NewSpec(f.text, f.size)); err != nil {
		return err
	}
	slog.Info("video watermarked", "in", f.in, "out", f.out)
	return nil
}
