package palette

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrNoOpaquePixels means the image decoded fine but has no pixel with
	// alpha 255, so there is no average to report. Zero-size images land here.
	ErrNoOpaquePixels = errors.New("no opaque pixels")

	// ErrDecodeFailure marks images that could not be read or decoded.
	ErrDecodeFailure = errors.New("image decode failure")

	// ErrInvalidAverage is returned when parsing a malformed R#G#B# string.
	ErrInvalidAverage = errors.New("invalid average color")
)

var averagePattern = regexp.MustCompile(`^R(\d{1,3})G(\d{1,3})B(\d{1,3})$`)

// AverageColor is the truncated per-channel mean of the opaque pixels of an image.
type AverageColor struct {
	R, G, B uint8
}

// String formats the color as R{r}G{g}B{b}, e.g. "R10G20B30".
func (c AverageColor) String() string {
	return fmt.Sprintf("R%dG%dB%d", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c AverageColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *AverageColor) UnmarshalText(text []byte) error {
	parsed, err := ParseAverageColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseAverageColor is the inverse of AverageColor.String.
func ParseAverageColor(s string) (AverageColor, error) {
	m := averagePattern.FindStringSubmatch(s)
	if m == nil {
		return AverageColor{}, fmt.Errorf("%w: %q", ErrInvalidAverage, s)
	}

	var channels [3]uint8
	for i, raw := range m[1:] {
		v, err := strconv.Atoi(raw)
		if err != nil || v > 255 {
			return AverageColor{}, fmt.Errorf("%w: channel %q out of range in %q", ErrInvalidAverage, raw, s)
		}
		channels[i] = uint8(v)
	}
	return AverageColor{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// accumulator holds running channel sums over opaque pixels.
// count never exceeds the number of pixels visited.
type accumulator struct {
	r, g, b uint64
	count   uint64
}

func (a *accumulator) add(p PackedColor) {
	if !p.Opaque() {
		return
	}
	a.r += uint64(p.Red())
	a.g += uint64(p.Green())
	a.b += uint64(p.Blue())
	a.count++
}

func (a *accumulator) merge(o accumulator) {
	a.r += o.r
	a.g += o.g
	a.b += o.b
	a.count += o.count
}

func (a accumulator) average() (AverageColor, error) {
	if a.count == 0 {
		return AverageColor{}, ErrNoOpaquePixels
	}
	return AverageColor{
		R: uint8(a.r / a.count),
		G: uint8(a.g / a.count),
		B: uint8(a.b / a.count),
	}, nil
}
