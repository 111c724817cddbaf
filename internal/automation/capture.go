package automation

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/pluxuryv8/astra-bridge/internal/mainthread"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultCaptureWidth   = 1280
	DefaultCaptureQuality = 60
	defaultGridStep       = 100
)

// CaptureOptions controls CaptureScreen.
type CaptureOptions struct {
	MaxWidth int
	Quality  int
	// Grid overlays a labelled coordinate grid in image space.
	Grid bool
}

// CaptureResult is an encoded screen capture. Width and Height describe the
// emitted image; ScreenWidth and ScreenHeight the screen it was taken from,
// in the point space used for input.
type CaptureResult struct {
	ImageBase64  string `json:"image_base64"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	Format       string `json:"format"`
}

// CaptureScreen captures the main display, downsamples it to at most
// MaxWidth pixels wide and encodes it as JPEG.
func (s *Service) CaptureScreen(ctx context.Context, opts CaptureOptions) (CaptureResult, error) {
	shot, err := s.screenshotter()
	if err != nil {
		return CaptureResult{}, err
	}
	// Capture is not thread-bound. Inline runs it on this goroutine and only
	// turns a backend panic into a *mainthread.PanicError.
	return mainthread.Call(ctx, mainthread.Inline{}, func(context.Context) (CaptureResult, error) {
		img, err := shot.CaptureScreen()
		if err != nil {
			return CaptureResult{}, fmt.Errorf("capture screen: %w", err)
		}
		sw, sh, err := shot.ScreenSize()
		if err != nil {
			return CaptureResult{}, fmt.Errorf("screen size: %w", err)
		}
		return encodeCapture(img, sw, sh, opts)
	})
}

func encodeCapture(img image.Image, screenW, screenH int, opts CaptureOptions) (CaptureResult, error) {
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultCaptureWidth
	}
	out := Downscale(img, maxWidth)
	if opts.Grid {
		out = DrawGrid(out, defaultGridStep)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: clampQuality(opts.Quality)}); err != nil {
		return CaptureResult{}, fmt.Errorf("encode jpeg: %w", err)
	}
	b := out.Bounds()
	return CaptureResult{
		ImageBase64:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:        b.Dx(),
		Height:       b.Dy(),
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
		Format:       "jpeg",
	}, nil
}

// Downscale resizes img to maxWidth pixels wide, keeping its aspect ratio.
// Images already within maxWidth are returned unchanged.
func Downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	nh := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func clampQuality(q int) int {
	switch {
	case q <= 0:
		return DefaultCaptureQuality
	case q > 100:
		return 100
	default:
		return q
	}
}
