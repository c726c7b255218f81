package strategy

import (
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReferenceImage is a decoded reference image reduced to the small
// luminance grid the heuristic synthesis stages operate on.
type ReferenceImage struct {
	ID     string
	Width  int
	Height int
	// Luma holds row-major luminance values in [0, 1],
	// Width*Height entries.
	Luma []float32
}

// At returns the luminance at (x, y), clamping out-of-range coordinates.
func (img *ReferenceImage) At(x, y int) float32 {
	if img.Width == 0 || img.Height == 0 {
		return 0
	}
	if x < 0 {
		x = 0
	}
	if x >= img.Width {
		x = img.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= img.Height {
		y = img.Height - 1
	}
	return img.Luma[y*img.Width+x]
}

// ImageLoader resolves a reference-image identifier to pixel data.
// A failed load is not fatal to generation: strategies treat it as a
// reduced reference count.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (*ReferenceImage, error)
}

// LoadAvailable loads every reference it can and drops the rest,
// logging each failure. The returned slice preserves request order.
func LoadAvailable(ctx context.Context, loader ImageLoader, refs []string, logger *zap.Logger) []*ReferenceImage {
	if loader == nil || len(refs) == 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]*ReferenceImage, 0, len(refs))
	for _, ref := range refs {
		img, err := loader.Load(ctx, ref)
		if err != nil {
			logger.Warn("reference image unavailable, continuing with reduced set",
				zap.String("ref", ref),
				zap.Error(err),
			)
			continue
		}
		out = append(out, img)
	}
	return out
}

const lumaGridSize = 64

// HTTPImageLoader fetches reference images over HTTP and downsamples
// them to the fixed-size luminance grid.
type HTTPImageLoader struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPImageLoader creates an HTTP loader. A nil client gets a
// default with a 30 s timeout.
func NewHTTPImageLoader(client *http.Client, logger *zap.Logger) *HTTPImageLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPImageLoader{
		client: client,
		logger: logger.With(zap.String("component", "image_loader")),
	}
}

// Load implements ImageLoader.
func (l *HTTPImageLoader) Load(ctx context.Context, ref string) (*ReferenceImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", ref, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", ref, resp.StatusCode)
	}
	decoded, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return downsample(ref, decoded), nil
}

func downsample(ref string, src image.Image) *ReferenceImage {
	bounds := src.Bounds()
	out := &ReferenceImage{
		ID:     ref,
		Width:  lumaGridSize,
		Height: lumaGridSize,
		Luma:   make([]float32, lumaGridSize*lumaGridSize),
	}
	for y := 0; y < lumaGridSize; y++ {
		for x := 0; x < lumaGridSize; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/lumaGridSize
			sy := bounds.Min.Y + y*bounds.Dy()/lumaGridSize
			r, g, b, _ := src.At(sx, sy).RGBA()
			// Rec. 601 luma on 16-bit channels.
			luma := (0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)) / 65535
			out.Luma[y*lumaGridSize+x] = luma
		}
	}
	return out
}

// SyntheticImageLoader derives a deterministic pseudo-image from the
// hash of the reference identifier. It makes the pipeline fully
// self-contained when the catalog names references that are not
// fetchable, and it is the default loader in tests.
type SyntheticImageLoader struct{}

// Load implements ImageLoader and never fails.
func (SyntheticImageLoader) Load(_ context.Context, ref string) (*ReferenceImage, error) {
	sum := sha256.Sum256([]byte(ref))
	out := &ReferenceImage{
		ID:     ref,
		Width:  lumaGridSize,
		Height: lumaGridSize,
		Luma:   make([]float32, lumaGridSize*lumaGridSize),
	}
	for i := range out.Luma {
		b := sum[i%len(sum)]
		// Mix in the position so the grid is not a repeating stripe.
		v := float32((int(b)+i*31)%256) / 255
		out.Luma[i] = v
	}
	return out, nil
}
