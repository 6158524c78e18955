package export

import "context"

// Rasterizer converts one HTML page into a fixed-layout PDF. Each call is
// one-shot and independent of the others.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, opts PageOptions) ([]byte, error)
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(ctx context.Context, html string, opts PageOptions) ([]byte, error)

func (f RasterizerFunc) Rasterize(ctx context.Context, html string, opts PageOptions) ([]byte, error) {
	return f(ctx, html, opts)
}

// PageOptions is the fixed page configuration of exported artifacts.
type PageOptions struct {
	Landscape       bool
	PaperWidthMM    float64
	PaperHeightMM   float64
	MarginMM        float64
	PrintBackground bool
}

const mmPerInch = 25.4

// DefaultPageOptions is A4 landscape with a 0.2mm margin.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		Landscape:       true,
		PaperWidthMM:    210,
		PaperHeightMM:   297,
		MarginMM:        0.2,
		PrintBackground: true,
	}
}

// inches returns paper width, height and margin in inches, portrait-oriented.
// Landscape is applied by the print backend.
func (o PageOptions) inches() (width, height, margin float64) {
	return o.PaperWidthMM / mmPerInch, o.PaperHeightMM / mmPerInch, o.MarginMM / mmPerInch
}
