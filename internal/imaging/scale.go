// Package imaging resolves responsive image variants for image assets.
package imaging

import (
	"errors"
	"fmt"
	"math"

	"github.com/rpattn/contentql/internal/domain"
)

// ErrZeroDimension is returned when an asset with a zero width or height is
// scaled.
var ErrZeroDimension = errors.New("image has a zero dimension")

// ErrInvalidTarget is returned for a non-positive target width or height.
var ErrInvalidTarget = errors.New("target dimension must be positive")

// Scale computes the descriptor of img scaled to the requested width and/or
// height. When both are given, each dimension is the smaller of the two
// candidates. With neither, img is returned unchanged.
func Scale(img domain.ImageDescriptor, width, height *int) (domain.ImageDescriptor, error) {
	if width == nil && height == nil {
		return img, nil
	}
	if (width != nil && *width <= 0) || (height != nil && *height <= 0) {
		return domain.ImageDescriptor{}, ErrInvalidTarget
	}
	if img.Width == 0 || img.Height == 0 {
		return domain.ImageDescriptor{}, fmt.Errorf("scale %s (%dx%d): %w", img.URL, img.Width, img.Height, ErrZeroDimension)
	}

	origW := float64(img.Width)
	origH := float64(img.Height)

	w, h := math.MaxInt, math.MaxInt
	if width != nil {
		target := float64(*width)
		w = min(w, *width)
		h = min(h, int(math.Round(origH/(origW/target))))
	}
	if height != nil {
		target := float64(*height)
		w = min(w, int(math.Round(origW/(origH/target))))
		h = min(h, *height)
	}

	scaled := img
	scaled.Width = w
	scaled.Height = h
	scaled.URL = fmt.Sprintf("%s?w=%d&h=%d", img.URL, w, h)
	return scaled, nil
}

// TargetsFromParams reads the target width and height from field parameters.
// "width"/"height" are preferred; "w"/"h" are accepted as short forms.
func TargetsFromParams(params domain.Params) (width, height *int) {
	if v, ok := lookupInt(params, "width", "w"); ok {
		width = &v
	}
	if v, ok := lookupInt(params, "height", "h"); ok {
		height = &v
	}
	return width, height
}

func lookupInt(params domain.Params, names ...string) (int, bool) {
	for _, name := range names {
		if v, ok := params.Int(name); ok {
			return v, true
		}
	}
	return 0, false
}
