// Package imageprep readies source images for submission to the generative
// provider and restores results to their original framing. Everything works
// on data URLs so the engine never owns files on disk.
package imageprep

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	"studio/internal/providers/genimg"
)

// Service implements the prepare and crop-back collaborators.
type Service struct {
	httpClient *http.Client
}

// NewService builds the service; a nil client gets one with a short timeout.
func NewService(httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{httpClient: httpClient}
}

// Prepare resizes and letterboxes a source onto a canvas matching the aspect
// hint, bounded by maxDimension, and reports the source's natural size.
func (s *Service) Prepare(ctx context.Context, sourceURL string, maxDimension int, aspectRatio string) (genimg.PreparedImage, error) {
	src, err := s.load(ctx, sourceURL)
	if err != nil {
		return genimg.PreparedImage{}, fmt.Errorf("prepare image: %w", err)
	}
	bounds := src.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	if maxDimension <= 0 {
		maxDimension = 1024
	}

	canvasW, canvasH := canvasSize(aspectRatio, maxDimension)
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	// Fit the source inside the canvas, centered, aspect preserved.
	scale := minFloat(float64(canvasW)/float64(origW), float64(canvasH)/float64(origH))
	fitW := int(float64(origW) * scale)
	fitH := int(float64(origH) * scale)
	x := (canvasW - fitW) / 2
	y := (canvasH - fitH) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(x, y, x+fitW, y+fitH), src, bounds, draw.Over, nil)

	dataURL, err := encodePNG(canvas)
	if err != nil {
		return genimg.PreparedImage{}, err
	}
	return genimg.PreparedImage{
		DataURL:        dataURL,
		OriginalWidth:  origW,
		OriginalHeight: origH,
	}, nil
}

// CropBack cuts a centered region matching the original aspect ratio out of a
// padded result, undoing the letterboxing a square generation added.
func (s *Service) CropBack(ctx context.Context, resultURL string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return resultURL, nil
	}
	src, err := s.load(ctx, resultURL)
	if err != nil {
		return "", fmt.Errorf("crop image: %w", err)
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	targetRatio := float64(width) / float64(height)
	cropW, cropH := srcW, srcH
	if float64(srcW)/float64(srcH) > targetRatio {
		cropW = int(float64(srcH) * targetRatio)
	} else {
		cropH = int(float64(srcW) / targetRatio)
	}
	x := bounds.Min.X + (srcW-cropW)/2
	y := bounds.Min.Y + (srcH-cropH)/2

	out := image.NewRGBA(image.Rect(0, 0, cropW, cropH))
	draw.Draw(out, out.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return encodePNG(out)
}

// Dimensions decodes just enough of the image to report its natural size.
// Failures are reported, not fatal; callers fall back to unknown dimensions.
func (s *Service) Dimensions(ctx context.Context, sourceURL string) (int, int, error) {
	data, err := s.loadBytes(ctx, sourceURL)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (s *Service) load(ctx context.Context, sourceURL string) (image.Image, error) {
	data, err := s.loadBytes(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (s *Service) loadBytes(ctx context.Context, sourceURL string) ([]byte, error) {
	switch {
	case strings.HasPrefix(sourceURL, "data:"):
		return decodeDataURL(sourceURL)
	case strings.HasPrefix(sourceURL, "http://"), strings.HasPrefix(sourceURL, "https://"):
		return s.fetch(ctx, sourceURL)
	default:
		return nil, fmt.Errorf("unsupported image source")
	}
}

func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}

func decodeDataURL(dataURL string) ([]byte, error) {
	comma := strings.Index(dataURL, ",")
	if comma < 0 {
		return nil, fmt.Errorf("malformed data url")
	}
	meta := dataURL[:comma]
	payload := dataURL[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func canvasSize(aspectRatio string, maxDimension int) (int, int) {
	w, h := 1, 1
	parts := strings.Split(strings.TrimSpace(aspectRatio), ":")
	if len(parts) == 2 {
		if pw, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && pw > 0 {
			if ph, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && ph > 0 {
				w, h = pw, ph
			}
		}
	}
	if w >= h {
		return maxDimension, maxDimension * h / w
	}
	return maxDimension * w / h, maxDimension
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
