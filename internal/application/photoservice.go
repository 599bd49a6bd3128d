package application

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	"image/png"
	"math"
	"net/http"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp" // Register WebP decoder.

	"github.com/impossibleiman/couplemap/internal/domain/model"
)

const pngDataURLPrefix = "data:image/png;base64,"

// MaxPhotoPixels bounds the decoded size of an upload and of a cropped
// surface. A small compressed file can declare huge dimensions, so the header
// is checked before any pixels are allocated.
const MaxPhotoPixels = 40_000_000

// CropRequest describes how an uploaded image was shown to the user and where
// the crop overlay ended up. Zero sizes fall back to the image's natural size
// (for Display) and to Display (for Container). A nil Rect selects the default
// centered overlay.
type CropRequest struct {
	Display   model.Size
	Container model.Size
	Rect      *model.CropRect
}

// CropResult is a cropped photo ready to store on a place.
type CropResult struct {
	Photo  string // PNG data URL.
	Source model.SourceRect
}

// PhotoService turns uploaded images into cropped, losslessly encoded photos.
type PhotoService struct {
	maxBytes int64
}

// NewPhotoService creates a PhotoService that rejects uploads larger than
// maxBytes. A non-positive maxBytes disables the limit.
func NewPhotoService(maxBytes int64) *PhotoService {
	return &PhotoService{maxBytes: maxBytes}
}

// CropUpload decodes raw image bytes, maps the requested display-space overlay
// into source pixels and extracts that region as a PNG data URL.
func (s *PhotoService) CropUpload(raw []byte, req CropRequest) (CropResult, error) {
	if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
		return CropResult{}, ErrPhotoTooLarge
	}

	img, err := decodeImage(raw)
	if err != nil {
		return CropResult{}, err
	}

	frame := cropFrameFor(img, req)
	src := frame.Source()

	photo, err := ExtractCrop(img, src)
	if err != nil {
		return CropResult{}, err
	}
	return CropResult{Photo: photo, Source: src}, nil
}

// cropFrameFor builds the crop frame for a decoded image and applies the
// requested overlay. The container never exceeds the displayed image, so a
// clamped overlay always maps inside the source pixels.
func cropFrameFor(img image.Image, req CropRequest) model.CropFrame {
	b := img.Bounds()
	natural := model.Size{W: float64(b.Dx()), H: float64(b.Dy())}

	display := req.Display
	if display.Empty() {
		display = natural
	}
	container := req.Container
	if container.Empty() {
		container = display
	}
	container.W = math.Min(container.W, display.W)
	container.H = math.Min(container.H, display.H)

	frame := model.NewCropFrame(natural, display, container)
	if req.Rect != nil && req.Rect.Finite() {
		frame.Rect = frame.Clamp(*req.Rect)
	}
	return frame
}

// ExtractCrop renders rect (in source pixels) from img onto a surface of
// rect.Width x rect.Height and returns it as a PNG data URL. rect is first cut
// down to the image bounds. A nil image, i.e. no crop ever established, or an
// empty intersection yields "".
func ExtractCrop(img image.Image, rect model.SourceRect) (string, error) {
	if img == nil {
		return "", nil
	}

	b := img.Bounds()
	rect = rect.Within(float64(b.Dx()), float64(b.Dy()))
	w, h := int(rect.Width), int(rect.Height)
	if w <= 0 || h <= 0 {
		return "", nil
	}
	if int64(w)*int64(h) > MaxPhotoPixels {
		return "", ErrPhotoTooManyPixels
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s2d := f64.Aff3{
		1, 0, -(float64(b.Min.X) + rect.X),
		0, 1, -(float64(b.Min.Y) + rect.Y),
	}
	xdraw.ApproxBiLinear.Transform(dst, s2d, img, b, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("encode cropped photo: %w", err)
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL returns the bytes carried by a base64 data URL.
func DecodeDataURL(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrInvalidDataURL
	}
	comma := strings.Index(raw, ",")
	if comma < 0 {
		return nil, ErrInvalidDataURL
	}

	meta := raw[len("data:"):comma]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, ErrInvalidDataURL
	}

	decoded, err := base64.StdEncoding.DecodeString(raw[comma+1:])
	if err != nil || len(decoded) == 0 {
		return nil, ErrInvalidDataURL
	}
	return decoded, nil
}

// decodeImage sniffs and decodes png, jpeg, gif or webp bytes. The declared
// dimensions are checked against MaxPhotoPixels before decoding.
func decodeImage(raw []byte) (image.Image, error) {
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return nil, ErrUnsupportedPhoto
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPhoto, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupportedPhoto
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPhotoPixels {
		return nil, ErrPhotoTooManyPixels
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPhoto, err)
	}
	return img, nil
}
