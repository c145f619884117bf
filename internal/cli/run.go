package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-resizer/internal/config"
	"github.com/aliskhannn/image-resizer/internal/report"
	"github.com/aliskhannn/image-resizer/internal/resizer"
	"github.com/aliskhannn/image-resizer/internal/storage/file"
)

// ErrFailed marks every error Run returns. The diagnostic has already been
// printed by then.
var ErrFailed = errors.New("resize failed")

// uploadDir is the bucket prefix resized images are stored under.
const uploadDir = "resized"

// fileStorage defines the interface for the optional upload backend.
type fileStorage interface {
	Save(ctx context.Context, subdir, filename string, src io.Reader, size int64) (string, error)
}

var (
	probe       = resizer.Probe
	openStorage = func(ctx context.Context, cfg config.Storage) (fileStorage, error) {
		return file.NewStorage(ctx, cfg)
	}
)

// Run resizes cfg.Image.Input into cfg.Image.Output and prints a summary to out.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	runID := uuid.NewString()

	fmt.Fprintln(out, "🖼️  Image resize utility")
	fmt.Fprintln(out, strings.Repeat("=", 50))

	if err := probe(); err != nil {
		fmt.Fprintf(out, "❌ Error: the imaging library is not usable: %v\n", err)
		fmt.Fprintln(out, resizer.InstallHint)
		zlog.Logger.Error().Err(err).Str("run_id", runID).Msg("capability probe failed")
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}

	r := resizer.New(out,
		resizer.WithQuality(cfg.Encode.Quality),
		resizer.WithOptimize(cfg.Encode.Optimize),
		resizer.WithRunID(runID),
	)

	target := cfg.Target()
	outcome, ok := r.TryResize(cfg.Image.Input, cfg.Image.Output, target)
	if !ok {
		fmt.Fprintln(out, "\n❌ The operation failed. Check the errors above.")
		return ErrFailed
	}

	summary, err := report.NewSummary(cfg.Image.Input, cfg.Image.Output, target, outcome == resizer.Resized)
	if err != nil {
		fmt.Fprintf(out, "❌ Error: %v\n", err)
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	summary.Print(out)

	if cfg.Storage.Enabled && summary.Written {
		if err := upload(ctx, cfg, out, runID); err != nil {
			fmt.Fprintf(out, "❌ Upload error: %v\n", err)
			zlog.Logger.Error().Err(err).Str("run_id", runID).Msg("failed to upload the image")
			return fmt.Errorf("%w: %w", ErrFailed, err)
		}
	}

	return nil
}

func upload(ctx context.Context, cfg *config.Config, out io.Writer, runID string) error {
	storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.Image.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}

	dst, err := storage.Save(ctx, uploadDir, cfg.Image.Output, f, info.Size())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "☁️  Uploaded to %s/%s\n", cfg.Storage.BucketName, dst)
	zlog.Logger.Info().Str("run_id", runID).Str("object", dst).Msg("image uploaded")

	return nil
}
