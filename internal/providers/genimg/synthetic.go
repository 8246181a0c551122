package genimg

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
)

// Synthetic renders deterministic placeholder results locally. It stands in
// for the remote provider when no API key is configured, keeping the whole
// pipeline exercisable offline and in tests.
type Synthetic struct{}

// NewSynthetic returns the offline provider.
func NewSynthetic() *Synthetic { return &Synthetic{} }

// GenerateBackground renders a flat placeholder in the requested color, or a
// seeded palette for scene and transparent requests.
func (s *Synthetic) GenerateBackground(ctx context.Context, req BackgroundRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w, h := aspectSize(req.AspectRatio)
	var base color.RGBA
	switch req.Kind {
	case BackgroundColor:
		base = parseHexColor(req.Color)
	case BackgroundTransparent:
		base = color.RGBA{}
	default:
		base = seededColor(req.ScenePrompt, 0)
	}
	return renderPlaceholder(w, h, base, seededColor(req.ScenePrompt+req.Color, 1)), nil
}

// GenerateModelShot renders a seeded placeholder for the shot.
func (s *Synthetic) GenerateModelShot(ctx context.Context, req ModelShotRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w, h := 1024, 1536
	return renderPlaceholder(w, h, seededColor(req.Prompt, 0), seededColor(req.Prompt+req.Style, 1)), nil
}

// SuggestPrompt returns a deterministic idea from the built-in lists.
func (s *Synthetic) SuggestPrompt(ctx context.Context, req SuggestRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return suggestionFor(req.Mode, seedOf(req.Product.DataURL)), nil
}

func seedOf(values ...string) int {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return int(binary.BigEndian.Uint32(sum[:4]) % 2147483647)
}

func seededColor(seed string, shift int) color.RGBA {
	sum := sha256.Sum256([]byte(seed))
	i := (shift * 3) % (len(sum) - 3)
	return color.RGBA{R: sum[i], G: sum[i+1], B: sum[i+2], A: 255}
}

func parseHexColor(value string) color.RGBA {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) != 6 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	parse := func(s string) uint8 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return uint8(v)
	}
	return color.RGBA{R: parse(value[0:2]), G: parse(value[2:4]), B: parse(value[4:6]), A: 255}
}

func renderPlaceholder(width, height int, base, accent color.RGBA) string {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripe := height / 12
	if stripe < 16 {
		stripe = 16
	}
	for y := 0; y < height; y += stripe * 2 {
		bottom := y + stripe
		if bottom > height {
			bottom = height
		}
		draw.Draw(img, image.Rect(0, y, width, bottom), &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func aspectSize(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 1920, 1080
	case "9:16":
		return 1080, 1920
	case "4:5":
		return 1024, 1280
	case "3:2":
		return 1536, 1024
	default:
		return 1024, 1024
	}
}

var (
	_ BackgroundGenerator = (*Synthetic)(nil)
	_ ModelShotGenerator  = (*Synthetic)(nil)
	_ PromptSuggester     = (*Synthetic)(nil)
)
