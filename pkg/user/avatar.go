package user

import (
	"bytes"
	"crypto/rand"
	"image"
	"image/color"
	"image/png"
)

// Placeholder avatars are identicon-style: a 5x5 grid mirrored across the
// vertical axis, drawn in one of a small fixed palette at 13px per cell.
const (
	avatarGrid = 5
	avatarCell = 13
)

var avatarPalette = []color.RGBA{
	{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}, // blue
	{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}, // green
	{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}, // amber
	{R: 0xef, G: 0x44, B: 0x44, A: 0xff}, // red
}

var avatarBackground = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}

// placeholderAvatarPNG renders a random identicon as PNG bytes. Randomness
// failures are not possible with crypto/rand on supported platforms; a short
// read would only make the pattern less varied, never invalid.
func placeholderAvatarPNG() []byte {
	seed := make([]byte, avatarGrid*((avatarGrid+1)/2)+1)
	_, _ = rand.Read(seed)

	fg := avatarPalette[int(seed[len(seed)-1])%len(avatarPalette)]

	size := avatarGrid * avatarCell
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, avatarBackground)
		}
	}

	half := (avatarGrid + 1) / 2
	for row := 0; row < avatarGrid; row++ {
		for col := 0; col < half; col++ {
			if seed[row*half+col]%2 == 0 {
				continue
			}
			fillCell(img, col, row, fg)
			fillCell(img, avatarGrid-1-col, row, fg)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func fillCell(img *image.RGBA, col, row int, c color.RGBA) {
	for y := row * avatarCell; y < (row+1)*avatarCell; y++ {
		for x := col * avatarCell; x < (col+1)*avatarCell; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
