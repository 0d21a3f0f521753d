package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"
)

// Skin is a colour scheme for veil cards
type Skin struct {
	Name       string
	Background [3]float64
	Accent     [3]float64
	Text       [3]float64
}

// Skins are cycled through by skin ID
var Skins = []Skin{
	{Name: "midnight", Background: [3]float64{0.07, 0.07, 0.12}, Accent: [3]float64{0.45, 0.35, 0.9}, Text: [3]float64{0.95, 0.95, 1}},
	{Name: "ember", Background: [3]float64{0.12, 0.05, 0.04}, Accent: [3]float64{0.95, 0.45, 0.2}, Text: [3]float64{1, 0.93, 0.88}},
	{Name: "tide", Background: [3]float64{0.03, 0.09, 0.12}, Accent: [3]float64{0.2, 0.75, 0.85}, Text: [3]float64{0.9, 0.98, 1}},
	{Name: "moss", Background: [3]float64{0.05, 0.1, 0.06}, Accent: [3]float64{0.45, 0.8, 0.4}, Text: [3]float64{0.92, 1, 0.92}},
}

// UnveilSkin frames a veil once its author has been revealed
var UnveilSkin = Skin{Name: "gold", Background: [3]float64{0.12, 0.09, 0.02}, Accent: [3]float64{0.93, 0.67, 0}, Text: [3]float64{1, 0.97, 0.86}}

const (
	veiledCaption   = "VEILED"
	unveiledCaption = "UNVEILED"
)

// CardStyle holds the dimensions of a veil card
type CardStyle struct {
	Width    int
	Padding  float64
	FontSize float64
	MinLines int
}

// VeilRenderer draws veils as PNG cards
type VeilRenderer struct {
	style CardStyle
}

// NewVeilRenderer creates a renderer with the default card style
func NewVeilRenderer() *VeilRenderer {
	return &VeilRenderer{
		style: CardStyle{
			Width:    640,
			Padding:  32,
			FontSize: 26,
			MinLines: 2,
		},
	}
}

// SkinFor returns the skin for an ID
func SkinFor(skinID int) Skin {
	if skinID < 0 {
		skinID = -skinID
	}
	return Skins[skinID%len(Skins)]
}

// RenderText draws veil text on the default skin
func (r *VeilRenderer) RenderText(content string) ([]byte, error) {
	return r.renderTextCard(content, Skins[0], veiledCaption)
}

// RenderUnveiledText redraws a text veil on the unveil skin
func (r *VeilRenderer) RenderUnveiledText(content string) ([]byte, error) {
	return r.renderTextCard(content, UnveilSkin, unveiledCaption)
}

// RenderPhoto fits a photo into a framed card using the skin for skinID
func (r *VeilRenderer) RenderPhoto(photo []byte, skinID int) ([]byte, error) {
	return r.renderPhotoCard(photo, SkinFor(skinID), veiledCaption)
}

// RenderUnveiledPhoto reframes the original photo on the unveil skin
func (r *VeilRenderer) RenderUnveiledPhoto(photo []byte) ([]byte, error) {
	return r.renderPhotoCard(photo, UnveilSkin, unveiledCaption)
}

func (r *VeilRenderer) renderTextCard(content string, skin Skin, caption string) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("Veil text rendered")
	}()

	face, err := loadFont(goregular.TTF, r.style.FontSize)
	if err != nil {
		return nil, err
	}

	textWidth := float64(r.style.Width) - 2*r.style.Padding

	// Measure on a scratch context before sizing the card
	measure := gg.NewContext(r.style.Width, 10)
	measure.SetFontFace(face)
	lines := measure.WordWrap(strings.TrimSpace(content), textWidth)
	if len(lines) < r.style.MinLines {
		lines = append(lines, make([]string, r.style.MinLines-len(lines))...)
	}

	lineHeight := r.style.FontSize * 1.5
	height := int(2*r.style.Padding + float64(len(lines))*lineHeight + 28)

	dc := gg.NewContext(r.style.Width, height)
	drawBackground(dc, skin)

	dc.SetFontFace(face)
	dc.SetRGB(skin.Text[0], skin.Text[1], skin.Text[2])
	y := r.style.Padding + r.style.FontSize
	for _, line := range lines {
		drawSharpText(dc, line, r.style.Padding, y)
		y += lineHeight
	}

	if err := drawCaption(dc, skin, caption); err != nil {
		return nil, err
	}
	return encodePNG(dc)
}

func (r *VeilRenderer) renderPhotoCard(photo []byte, skin Skin, caption string) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	log.WithField("format", format).Debug("Decoded veil photo")

	inner := r.style.Width - int(2*r.style.Padding)
	bounds := src.Bounds()
	scaledHeight := bounds.Dy() * inner / max(bounds.Dx(), 1)
	if scaledHeight < 1 {
		scaledHeight = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, inner, scaledHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)

	height := scaledHeight + int(2*r.style.Padding) + 28
	dc := gg.NewContext(r.style.Width, height)
	drawBackground(dc, skin)

	dc.SetRGB(skin.Accent[0], skin.Accent[1], skin.Accent[2])
	dc.DrawRectangle(r.style.Padding-3, r.style.Padding-3, float64(inner)+6, float64(scaledHeight)+6)
	dc.Fill()
	dc.DrawImage(scaled, int(r.style.Padding), int(r.style.Padding))

	if err := drawCaption(dc, skin, caption); err != nil {
		return nil, err
	}
	return encodePNG(dc)
}

func drawBackground(dc *gg.Context, skin Skin) {
	height := dc.Height()
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(skin.Background[0]+t*0.03, skin.Background[1]+t*0.03, skin.Background[2]+t*0.05)
		dc.DrawLine(0, float64(i), float64(dc.Width()), float64(i))
		dc.Stroke()
	}

	dc.SetRGB(skin.Accent[0], skin.Accent[1], skin.Accent[2])
	dc.DrawRectangle(0, 0, 6, float64(height))
	dc.Fill()
}

func drawCaption(dc *gg.Context, skin Skin, caption string) error {
	face, err := loadFont(gobold.TTF, 12)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGBA(skin.Text[0], skin.Text[1], skin.Text[2], 0.6)
	dc.DrawStringAnchored(caption, float64(dc.Width())-20, float64(dc.Height())-16, 1, 0)
	return nil
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
