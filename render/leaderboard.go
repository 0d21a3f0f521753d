package render

import (
	"fmt"
	"time"

	"veilbot/domain/entities"

	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// TableColumn defines a column in the leaderboard table
type TableColumn struct {
	Header    string
	XPosition int
	ColorRGB  [3]float64
}

// LeaderboardStyle defines the visual style of the leaderboard
type LeaderboardStyle struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	Podium    [3][4]float64 // Row tint for the top three, RGBA
}

// LeaderboardGenerator renders the correct-guess leaderboard
type LeaderboardGenerator struct {
	style LeaderboardStyle
}

// NewLeaderboardGenerator creates a generator with the default style
func NewLeaderboardGenerator() *LeaderboardGenerator {
	return &LeaderboardGenerator{
		style: LeaderboardStyle{
			Width:     340,
			MinHeight: 160,
			Padding:   15,
			RowHeight: 26,
			Podium: [3][4]float64{
				{1, 0.84, 0, 0.1},     // Gold
				{0.8, 0.8, 0.8, 0.08}, // Silver
				{0.8, 0.5, 0.2, 0.06}, // Bronze
			},
		},
	}
}

// Generate renders the leaderboard. usernames maps user IDs to display names.
func (g *LeaderboardGenerator) Generate(entries []*entities.LeaderboardEntry, usernames map[int64]string) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(entries),
		}).Debug("Leaderboard image generation completed")
	}()

	columns := []TableColumn{
		{Header: "#", XPosition: g.style.Padding, ColorRGB: [3]float64{0.85, 0.85, 0.9}},
		{Header: "Guesser", XPosition: g.style.Padding + 30, ColorRGB: [3]float64{1, 1, 1}},
		{Header: "Unveiled", XPosition: g.style.Padding + 220, ColorRGB: [3]float64{0.85, 1, 0.85}},
	}

	// Header (25px) + header padding (30px) + rows + bottom padding (15px)
	height := 25 + 30 + len(entries)*g.style.RowHeight + 15
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}

	dc := gg.NewContext(g.style.Width, height)
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawLine(0, float64(i), float64(g.style.Width), float64(i))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, err
	}
	rankFace, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	y := float64(25)
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.style.Width), 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.Header, float64(col.XPosition), y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.style.Width), y+8)
	dc.Stroke()

	if len(entries) == 0 {
		dc.SetRGB(0.7, 0.7, 0.7)
		dc.DrawStringAnchored("No veils unveiled yet", float64(g.style.Width)/2, y+45, 0.5, 0.5)
		return encodePNG(dc)
	}

	y += 30
	for i, entry := range entries {
		if i < len(g.style.Podium) {
			c := g.style.Podium[i]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.style.Width), float64(g.style.RowHeight))
		dc.Fill()

		if i < 3 {
			var red, green, blue float64
			switch i {
			case 0:
				red, green, blue = 1, 0.84, 0
			case 1:
				red, green, blue = 0.75, 0.75, 0.75
			case 2:
				red, green, blue = 0.8, 0.5, 0.2
			}
			dc.SetRGB(red, green, blue)
			dc.DrawCircle(float64(g.style.Padding+3), y-4, 6)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(rankFace)
			dc.DrawStringAnchored(fmt.Sprintf("%d", entry.Rank), float64(g.style.Padding+3), y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			dc.SetRGB(columns[0].ColorRGB[0], columns[0].ColorRGB[1], columns[0].ColorRGB[2])
			drawSharpText(dc, fmt.Sprintf("%d", entry.Rank), float64(columns[0].XPosition), y)
		}

		name := truncateName(usernames[entry.UserID], entry.UserID)
		dc.SetRGB(columns[1].ColorRGB[0], columns[1].ColorRGB[1], columns[1].ColorRGB[2])
		drawSharpText(dc, name, float64(columns[1].XPosition), y)

		dc.SetRGB(columns[2].ColorRGB[0], columns[2].ColorRGB[1], columns[2].ColorRGB[2])
		drawSharpText(dc, fmt.Sprintf("%d", entry.CorrectGuesses), float64(columns[2].XPosition), y)

		y += float64(g.style.RowHeight)
	}

	return encodePNG(dc)
}

func truncateName(name string, userID int64) string {
	if name == "" {
		name = fmt.Sprintf("User%d", userID)
	}
	runes := []rune(name)
	if len(runes) > 20 {
		return string(runes[:19]) + "…"
	}
	return name
}
