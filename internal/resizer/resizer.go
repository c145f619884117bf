package resizer

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// DefaultQuality is the JPEG quality used for the resized image.
const DefaultQuality = 95

// Outcome tells a successful Resize apart from a no-op.
type Outcome int

const (
	// Resized means a new file was written at the output path.
	Resized Outcome = iota
	// AlreadyTarget means the input already had the target size and nothing was written.
	AlreadyTarget
)

func (o Outcome) String() string {
	if o == AlreadyTarget {
		return "already-target"
	}
	return "resized"
}

// Options configure the encoder and the resampling filter.
type Options struct {
	Quality  int
	Optimize bool
	Filter   imaging.ResampleFilter
	RunID    string // attached to log events
}

// Option modifies Options.
type Option func(*Options)

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(o *Options) { o.Quality = q }
}

// WithOptimize enables the smallest encoding the output codec supports.
// The standard JPEG encoder has no optimisation pass, so only PNG output is affected.
func WithOptimize(on bool) Option {
	return func(o *Options) { o.Optimize = on }
}

// WithFilter overrides the Lanczos resampling filter.
func WithFilter(f imaging.ResampleFilter) Option {
	return func(o *Options) { o.Filter = f }
}

// WithRunID tags log events with the given run id.
func WithRunID(id string) Option {
	return func(o *Options) { o.RunID = id }
}

// Resizer loads one image, resamples it to a target size and writes the result.
// Progress lines are written to out.
type Resizer struct {
	out  io.Writer
	opts Options
}

// New creates a Resizer printing progress to out.
func New(out io.Writer, opts ...Option) *Resizer {
	o := Options{
		Quality:  DefaultQuality,
		Optimize: true,
		Filter:   imaging.Lanczos,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Resizer{out: out, opts: o}
}

// TryResize runs Resize and converts every failure, panics included, into a
// printed diagnostic and a false ok. outcome is meaningful only when ok.
func (r *Resizer) TryResize(input, output string, target Size) (outcome Outcome, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.report(input, output, newError(KindUnexpected, input, fmt.Errorf("panic: %v", rec)))
			outcome, ok = 0, false
		}
	}()

	outcome, err := r.Resize(input, output, target)
	if err != nil {
		r.report(input, output, err)
		return 0, false
	}

	zlog.Logger.Info().
		Str("run_id", r.opts.RunID).
		Str("input", input).
		Str("output", output).
		Str("outcome", outcome.String()).
		Msg("resize finished")

	return outcome, true
}

func (r *Resizer) report(input, output string, err error) {
	kind := KindOf(err)

	path := input
	var e *Error
	if errors.As(err, &e) && e.Path != "" {
		path = e.Path
	}

	switch kind {
	case KindNotFound:
		fmt.Fprintf(r.out, "❌ Error: file '%s' does not exist\n", path)
	case KindPermission:
		fmt.Fprintf(r.out, "❌ Permission error: %v\n", errors.Unwrap(err))
		fmt.Fprintln(r.out, "Check that you have write permission on the destination directory")
	case KindInvalidImage:
		fmt.Fprintf(r.out, "❌ Error: '%s' is not a valid image file\n", path)
	default:
		fmt.Fprintf(r.out, "❌ Unexpected error: %v\n", err)
	}

	zlog.Logger.Error().
		Err(err).
		Str("run_id", r.opts.RunID).
		Str("kind", kind.String()).
		Str("input", input).
		Str("output", output).
		Msg("resize failed")
}

// Resize resizes the image at input to exactly target and writes it to output.
// If the image already has the target size nothing is written and
// AlreadyTarget is returned. Errors are always *Error.
func (r *Resizer) Resize(input, output string, target Size) (Outcome, error) {
	if target.Width <= 0 || target.Height <= 0 {
		return 0, newError(KindUnexpected, input, fmt.Errorf("invalid target size %s", target))
	}

	if _, err := os.Stat(input); err != nil {
		return 0, newError(classify(err), input, err)
	}

	fmt.Fprintf(r.out, "Loading image: %s\n", input)

	src, info, err := load(input)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(r.out, "Original size: %s pixels\n", info.Size)
	fmt.Fprintf(r.out, "Format: %s\n", info.Format)
	fmt.Fprintf(r.out, "Mode: %s\n", info.Mode)

	if info.Size == target {
		fmt.Fprintln(r.out, "The image already has the target size!")
		return AlreadyTarget, nil
	}

	// Perform resizing.
	resized := imaging.Resize(src, target.Width, target.Height, r.opts.Filter)

	fmt.Fprintf(r.out, "Saving resized image: %s\n", output)

	if err := r.save(resized, output); err != nil {
		return 0, err
	}

	fmt.Fprintf(r.out, "✅ Image resized successfully to %s pixels\n", target)

	return Resized, nil
}

// load opens and decodes the image at path.
func load(path string) (image.Image, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, newError(classify(err), path, err)
	}
	defer f.Close()

	// Read the header first for the format name and color model.
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, Info{}, newError(KindInvalidImage, path, fmt.Errorf("decode config: %w", err))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, Info{}, newError(KindUnexpected, path, err)
	}

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, Info{}, newError(KindInvalidImage, path, fmt.Errorf("decode: %w", err))
	}

	b := img.Bounds()

	return img, newInfo(b.Dx(), b.Dy(), format, cfg.ColorModel), nil
}

// save encodes img by the extension of path into a temporary file next to it
// and renames it into place. The temporary file is removed on failure.
// An existing read-only file at path is not replaced.
func (r *Resizer) save(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return newError(KindUnexpected, path, err)
	}

	if fi, err := os.Stat(path); err == nil && fi.Mode().Perm()&0o200 == 0 {
		return newError(KindPermission, path, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission})
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return newError(classify(err), path, err)
	}

	if err := imaging.Encode(f, img, format, r.encodeOptions()...); err != nil {
		f.Close()
		os.Remove(tmp)
		return newError(classify(err), path, fmt.Errorf("encode: %w", err))
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return newError(classify(err), path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newError(classify(err), path, err)
	}

	return nil
}

func (r *Resizer) encodeOptions() []imaging.EncodeOption {
	opts := []imaging.EncodeOption{imaging.JPEGQuality(r.opts.Quality)}
	if r.opts.Optimize {
		opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
	}
	return opts
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	default:
		return KindUnexpected
	}
}
