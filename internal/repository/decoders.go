package repository

// Decoders registered with image.Decode.
import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)
