package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts the image operations used to build contact sheets.
type Renderer interface {
	// CreateCanvas creates a drawing canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data of the given format.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image. quality applies to JPEG only.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas provides drawing operations for compositing images.
type Canvas interface {
	// DrawImageScaled draws img scaled into the given box.
	DrawImageScaled(img image.Image, x, y, width, height int)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws text anchored at the given position.
	DrawText(text string, x, y int, style TextStyle)

	// ToImage returns the canvas contents.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
	Align    TextAlign
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat is the encoding of a captured frame.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// Extension returns the file extension for the format without a dot.
func (f ImageFormat) Extension() string {
	return string(f)
}

// Valid reports whether f is a supported format.
func (f ImageFormat) Valid() bool {
	return f == FormatPNG || f == FormatJPEG
}

// ParseImageFormat accepts "png", "jpeg" or "jpg".
func ParseImageFormat(s string) (ImageFormat, bool) {
	switch s {
	case "png":
		return FormatPNG, true
	case "jpeg", "jpg":
		return FormatJPEG, true
	}
	return "", false
}
