package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
)

const (
	startQuality = 82
	qualityStep  = 8
	floorQuality = 50
)

type Fit int

const (
	// FitContain scales the whole image into the box and pads the rest with the background.
	FitContain Fit = iota
	// FitCover fills the box and crops the overflow around the center.
	FitCover
)

// Shape is the target geometry of a normalized image.
type Shape struct {
	Width              int
	Height             int
	Fit                Fit
	Background         color.Color
	WithoutEnlargement bool
}

var (
	// Portrait is the alumni photo shape: 1000x1400 letterboxed on white.
	Portrait = Shape{Width: 1000, Height: 1400, Fit: FitContain, Background: color.White}
	// Banner is the activity carousel shape: 2000x1200 crop-to-fill, never upscaled.
	Banner = Shape{Width: 2000, Height: 1200, Fit: FitCover, WithoutEnlargement: true}
)

// Processed is an encoded JPEG plus the metadata stored with it.
type Processed struct {
	Data    []byte
	Width   int
	Height  int
	Quality int
}

type Normalizer struct {
	log zerolog.Logger
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.Get()}
}

// Normalize decodes an image in any supported format, applies EXIF orientation,
// reshapes it and re-encodes as JPEG, lowering quality until the result fits
// maxBytes. ErrImageTooLarge is returned when even the floor quality is too big.
func (n *Normalizer) Normalize(data []byte, shape Shape, maxBytes int64) (*Processed, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", errors.ErrInvalidFileFormat, err)
	}

	img := flatten(reshape(src, shape))
	bounds := img.Bounds()

	quality := startQuality
	encoded, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}
	for maxBytes > 0 && int64(len(encoded)) > maxBytes && quality > floorQuality {
		quality -= qualityStep
		if encoded, err = encodeJPEG(img, quality); err != nil {
			return nil, err
		}
	}

	if maxBytes > 0 && int64(len(encoded)) > maxBytes {
		n.log.Debug().Int("bytes", len(encoded)).Int64("max_bytes", maxBytes).Msg("Image over limit at floor quality")
		return nil, fmt.Errorf("%w (>%d KB)", errors.ErrImageTooLarge, (len(encoded)+512)/1024)
	}

	return &Processed{
		Data:    encoded,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Quality: quality,
	}, nil
}

func reshape(src image.Image, shape Shape) image.Image {
	if shape.Width <= 0 || shape.Height <= 0 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return src
	}

	scaleW := float64(shape.Width) / float64(w)
	scaleH := float64(shape.Height) / float64(h)

	switch shape.Fit {
	case FitCover:
		scale := scaleW
		if scaleH > scale {
			scale = scaleH
		}
		if shape.WithoutEnlargement && scale > 1 {
			return src
		}
		return imaging.Fill(src, shape.Width, shape.Height, imaging.Center, imaging.Lanczos)
	default:
		scale := scaleW
		if scaleH < scale {
			scale = scaleH
		}
		if shape.WithoutEnlargement && scale > 1 {
			scale = 1
		}
		nw := maxInt(1, int(float64(w)*scale+0.5))
		nh := maxInt(1, int(float64(h)*scale+0.5))
		resized := imaging.Resize(src, nw, nh, imaging.Lanczos)

		bg := shape.Background
		if bg == nil {
			bg = color.White
		}
		return imaging.PasteCenter(imaging.New(shape.Width, shape.Height, bg), resized)
	}
}

// flatten composites transparent pixels over white, since JPEG has no alpha.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
