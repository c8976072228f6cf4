package palette

import "image/color"

// opaque is the only alpha value that contributes to an average.
const opaque = 0xff

// PackedColor is a 32-bit ARGB value: alpha in the top byte, then red,
// green and blue, 8 bits each.
type PackedColor uint32

// Pack converts any color to non-premultiplied 8-bit ARGB.
func Pack(c color.Color) PackedColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return PackARGB(n.A, n.R, n.G, n.B)
}

// PackARGB assembles a PackedColor from its channels.
func PackARGB(a, r, g, b uint8) PackedColor {
	return PackedColor(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (p PackedColor) Alpha() uint8 { return uint8((p >> 24) & 0xff) }
func (p PackedColor) Red() uint8   { return uint8((p >> 16) & 0xff) }
func (p PackedColor) Green() uint8 { return uint8((p >> 8) & 0xff) }
func (p PackedColor) Blue() uint8  { return uint8(p & 0xff) }

// Opaque reports whether the pixel takes part in an average.
func (p PackedColor) Opaque() bool {
	return p.Alpha() == opaque
}

// NRGBA returns the unpacked color.
func (p PackedColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.Red(), G: p.Green(), B: p.Blue(), A: p.Alpha()}
}
