package cli

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-resizer/internal/config"
	"github.com/aliskhannn/image-resizer/internal/resizer"
)

type fakeStorage struct {
	subdir   string
	filename string
	data     []byte
	err      error
}

func (f *fakeStorage) Save(_ context.Context, subdir, filename string, src io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", errors.New("size mismatch")
	}
	f.subdir, f.filename, f.data = subdir, filename, data
	return subdir + "/" + filepath.Base(filename), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Image: config.Image{
			Input:  filepath.Join(dir, "fons.jpg"),
			Output: filepath.Join(dir, "fons_1920x1080.jpg"),
			Width:  resizer.DefaultSize.Width,
			Height: resizer.DefaultSize.Height,
		},
		Encode: config.Encode{Quality: resizer.DefaultQuality, Optimize: true},
	}
}

// writeNoisyImage writes a w x h JPEG with enough detail that downscaling shrinks the file.
func writeNoisyImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.Black)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*13) ^ (x * y))
			img.Pix[img.PixOffset(x, y)] = v
			img.Pix[img.PixOffset(x, y)+1] = v * 3
			img.Pix[img.PixOffset(x, y)+2] = v * 5
		}
	}
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(95)))
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeNoisyImage(t, cfg.Image.Input, 3840, 2160)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out))

	img, err := imaging.Open(cfg.Image.Output)
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 1080, img.Bounds().Dy())

	in, err := os.Stat(cfg.Image.Input)
	require.NoError(t, err)
	res, err := os.Stat(cfg.Image.Output)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Original size: 3840x2160 pixels")
	assert.Contains(t, out.String(), "📊 Summary:")
	assert.Contains(t, out.String(), "Final resolution: 1920x1080 pixels")
	if res.Size() < in.Size() {
		assert.Contains(t, out.String(), "Size reduction: ")
		assert.NotContains(t, out.String(), "Size reduction: -")
	} else {
		assert.NotContains(t, out.String(), "Size reduction")
	}
}

func TestRunAlreadyTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Image.Width, cfg.Image.Height = 64, 36
	require.NoError(t, imaging.Save(imaging.New(64, 36, color.White), cfg.Image.Input))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out))

	assert.NoFileExists(t, cfg.Image.Output)
	assert.Contains(t, out.String(), "not written, input already at target size")
}

func TestRunAlreadyTargetIgnoresLeftoverOutput(t *testing.T) {
	fake := &fakeStorage{}

	orig := openStorage
	openStorage = func(context.Context, config.Storage) (fileStorage, error) { return fake, nil }
	t.Cleanup(func() { openStorage = orig })

	cfg := testConfig(t)
	cfg.Image.Width, cfg.Image.Height = 64, 36
	cfg.Storage = config.Storage{Enabled: true, Endpoint: "localhost:9000", BucketName: "images"}
	require.NoError(t, imaging.Save(imaging.New(64, 36, color.White), cfg.Image.Input))

	leftover := []byte("output of an earlier run")
	require.NoError(t, os.WriteFile(cfg.Image.Output, leftover, 0o644))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out))

	assert.Contains(t, out.String(), "not written, input already at target size")
	assert.NotContains(t, out.String(), "Size reduction")
	assert.NotContains(t, out.String(), "Uploaded to")
	assert.Nil(t, fake.data)

	kept, err := os.ReadFile(cfg.Image.Output)
	require.NoError(t, err)
	assert.Equal(t, leftover, kept)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, cfg *config.Config)
		message string
	}{
		{
			name:    "missing input",
			setup:   func(*testing.T, *config.Config) {},
			message: "does not exist",
		},
		{
			name: "not an image",
			setup: func(t *testing.T, cfg *config.Config) {
				require.NoError(t, os.WriteFile(cfg.Image.Input, []byte("plain text"), 0o644))
			},
			message: "is not a valid image file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.setup(t, cfg)

			var out bytes.Buffer
			err := Run(context.Background(), cfg, &out)

			assert.ErrorIs(t, err, ErrFailed)
			assert.Contains(t, out.String(), tt.message)
			assert.Contains(t, out.String(), "❌ The operation failed")
			assert.NoFileExists(t, cfg.Image.Output)
		})
	}
}

func TestRunProbeFailure(t *testing.T) {
	probeErr := &resizer.Error{Kind: resizer.KindMissingDependency, Err: errors.New("no jpeg codec")}

	orig := probe
	probe = func() error { return probeErr }
	t.Cleanup(func() { probe = orig })

	cfg := testConfig(t)
	writeNoisyImage(t, cfg.Image.Input, 64, 64)

	var out bytes.Buffer
	err := Run(context.Background(), cfg, &out)

	assert.ErrorIs(t, err, ErrFailed)
	assert.Equal(t, resizer.KindMissingDependency, resizer.KindOf(err))
	assert.Contains(t, out.String(), resizer.InstallHint)
	assert.NoFileExists(t, cfg.Image.Output)
}

func TestRunUpload(t *testing.T) {
	fake := &fakeStorage{}

	orig := openStorage
	openStorage = func(context.Context, config.Storage) (fileStorage, error) { return fake, nil }
	t.Cleanup(func() { openStorage = orig })

	cfg := testConfig(t)
	cfg.Image.Width, cfg.Image.Height = 32, 18
	cfg.Storage = config.Storage{Enabled: true, Endpoint: "localhost:9000", BucketName: "images"}
	writeNoisyImage(t, cfg.Image.Input, 64, 64)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out))

	written, err := os.ReadFile(cfg.Image.Output)
	require.NoError(t, err)

	assert.Equal(t, uploadDir, fake.subdir)
	assert.Equal(t, written, fake.data)
	assert.Contains(t, out.String(), "Uploaded to images/resized/fons_1920x1080.jpg")

	fake.err = errors.New("bucket unreachable")
	out.Reset()
	err = Run(context.Background(), cfg, &out)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out.String(), "bucket unreachable")
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"extra.jpg"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}
