// Package glyph loads a CJK font face for pixel measurement and renders kanji as block art.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned when none of the candidate font files could be loaded.
var ErrNoFont = errors.New("no usable CJK font found")

// DefaultFontPaths are common system locations of fonts with Japanese coverage.
var DefaultFontPaths = []string{
	// macOS
	"/System/Library/Fonts/ヒラギノ角ゴシック W3.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	// Windows
	"C:\\Windows\\Fonts\\msgothic.ttc",
	"C:\\Windows\\Fonts\\YuGothM.ttc",
}

// Face is a sized font face.
type Face struct {
	face font.Face
	size float64
}

// LoadFace returns a face for the first path that parses, trying collections first.
func LoadFace(paths []string, size float64) (*Face, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if face, err := NewFace(data, size); err == nil {
			return face, nil
		}
	}
	return nil, ErrNoFont
}

// NewFace parses a font or font collection and builds a face at size points (72 DPI).
func NewFace(data []byte, size float64) (*Face, error) {
	fnt, err := parseFont(data)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face: %w", err)
	}
	return &Face{face: face, size: size}, nil
}

func parseFont(data []byte) (*opentype.Font, error) {
	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
		if fnt, err := coll.Font(0); err == nil {
			return fnt, nil
		}
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return fnt, nil
}

// Size returns the face size in points.
func (f *Face) Size() float64 {
	return f.size
}

// Advance returns the horizontal advance of s in pixels.
func (f *Face) Advance(s string) float64 {
	return fixedToFloat(font.MeasureString(f.face, s))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// RenderBlock renders the first character of char as half-block art (▀▄█)
// cols wide and rows tall in terminal cells.
func (f *Face) RenderBlock(char string, cols, rows int) string {
	if char == "" || cols <= 0 || rows <= 0 {
		return ""
	}
	r := []rune(char)[0]

	bounds, _, ok := f.face.GlyphBounds(r)
	if !ok {
		return ""
	}
	glyphWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	const padding = 4
	srcWidth := max(glyphWidth+padding*2, 64)
	srcHeight := max(glyphHeight+padding*2, 64)

	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: f.face,
		Dot:  fixed.P((srcWidth-glyphWidth)/2-bounds.Min.X.Floor(), srcHeight-padding-bounds.Max.Y.Ceil()),
	}
	d.DrawString(string(r))

	return halfBlocks(scaleDown(src, cols, rows*2), cols, rows)
}

// scaleDown shrinks a grayscale image by area averaging.
func scaleDown(src *image.Gray, width, height int) *image.Gray {
	sw, sh := src.Bounds().Max.X, src.Bounds().Max.Y
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xRatio := float64(sw) / float64(width)
	yRatio := float64(sh) / float64(height)

	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			x1, y1 := int(float64(dx)*xRatio), int(float64(dy)*yRatio)
			x2, y2 := min(int(float64(dx+1)*xRatio), sw), min(int(float64(dy+1)*yRatio), sh)

			sum, count := 0, 0
			for y := y1; y < y2; y++ {
				for x := x1; x < x2; x++ {
					sum += int(src.GrayAt(x, y).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}
	return dst
}

func halfBlocks(img *image.Gray, cols, rows int) string {
	const threshold = 40
	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := img.GrayAt(col, row*2).Y > threshold
			bottom := img.GrayAt(col, row*2+1).Y > threshold
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
