package report

import (
	"fmt"
	"io"
	"os"

	"github.com/aliskhannn/image-resizer/internal/resizer"
)

const bytesPerMB = 1024 * 1024

// MB converts a byte count to binary megabytes.
func MB(n int64) float64 {
	return float64(n) / bytesPerMB
}

// Summary compares the input file with the resized one.
type Summary struct {
	Input       string
	Output      string
	InputBytes  int64
	OutputBytes int64
	Target      resizer.Size
	Written     bool // false when the input already had the target size
}

// NewSummary stats input and, if written, output. When nothing was written the
// input stands in for the result, whatever file sits at the output path.
func NewSummary(input, output string, target resizer.Size, written bool) (Summary, error) {
	in, err := os.Stat(input)
	if err != nil {
		return Summary{}, fmt.Errorf("stat input: %w", err)
	}

	s := Summary{
		Input:       input,
		Output:      output,
		InputBytes:  in.Size(),
		OutputBytes: in.Size(),
		Target:      target,
	}

	if !written {
		return s, nil
	}

	out, err := os.Stat(output)
	if err != nil {
		return Summary{}, fmt.Errorf("stat output: %w", err)
	}
	s.OutputBytes = out.Size()
	s.Written = true

	return s, nil
}

// Reduction returns the size reduction in percent. ok is false unless the
// output is strictly smaller than the input.
func (s Summary) Reduction() (pct float64, ok bool) {
	if s.InputBytes <= 0 || s.OutputBytes >= s.InputBytes {
		return 0, false
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100, true
}

// Print writes the human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n📊 Summary:")
	fmt.Fprintf(w, "   Original file: %s (%.2f MB)\n", s.Input, MB(s.InputBytes))

	if s.Written {
		fmt.Fprintf(w, "   Resulting file: %s (%.2f MB)\n", s.Output, MB(s.OutputBytes))
	} else {
		fmt.Fprintf(w, "   Resulting file: %s not written, input already at target size\n", s.Output)
	}

	fmt.Fprintf(w, "   Final resolution: %s pixels\n", s.Target)

	if pct, ok := s.Reduction(); ok {
		fmt.Fprintf(w, "   Size reduction: %.1f%%\n", pct)
	}
}
