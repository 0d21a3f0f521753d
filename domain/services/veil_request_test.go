package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVeilRequest_Validate(t *testing.T) {
	base := func() VeilRequest {
		return VeilRequest{GuildID: 1, ChannelID: 2, AuthorID: 3}
	}

	tests := []struct {
		name    string
		mutate  func(*VeilRequest)
		wantErr bool
	}{
		{
			name:   "text veil",
			mutate: func(r *VeilRequest) { r.Content = "I ate the last donut" },
		},
		{
			name:   "photo veil",
			mutate: func(r *VeilRequest) { r.PhotoURL = "https://cdn.discordapp.com/attachments/1/2/pic.png" },
		},
		{
			name:    "empty veil",
			mutate:  func(r *VeilRequest) { r.Content = "   " },
			wantErr: true,
		},
		{
			name: "text and photo together",
			mutate: func(r *VeilRequest) {
				r.Content = "hello"
				r.PhotoURL = "https://cdn.discordapp.com/a.png"
			},
			wantErr: true,
		},
		{
			name:    "photo reference that is not a URL",
			mutate:  func(r *VeilRequest) { r.PhotoURL = "not a url" },
			wantErr: true,
		},
		{
			name:   "exactly the character limit",
			mutate: func(r *VeilRequest) { r.Content = strings.Repeat("a", MaxVeilLength) },
		},
		{
			name:    "one character over the limit",
			mutate:  func(r *VeilRequest) { r.Content = strings.Repeat("a", MaxVeilLength+1) },
			wantErr: true,
		},
		{
			name:    "too many emoji",
			mutate:  func(r *VeilRequest) { r.Content = strings.Repeat("😀", MaxVeilEmoji+1) },
			wantErr: true,
		},
		{
			name:    "missing author",
			mutate:  func(r *VeilRequest) { r.AuthorID = 0; r.Content = "hi" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			req.Normalize()

			err := req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVeil)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCountEmoji(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "plain text", input: "plain text", want: 0},
		{name: "single code point emoji", input: "hi 😀 there 🎉", want: 2},
		{name: "text presentation symbol", input: "☀", want: 1},
		{name: "flag", input: "🇺🇸", want: 1},
		{name: "two flags", input: "🇺🇸🇯🇵", want: 2},
		{name: "zwj family", input: "👨‍👩‍👧", want: 1},
		{name: "skin tone modifier", input: "👍🏽", want: 1},
		{name: "keycap", input: "1️⃣", want: 1},
		{name: "bare digits", input: "123", want: 0},
		{name: "custom emoji", input: "<:pepe:123456789012345678>", want: 1},
		{name: "animated custom emoji", input: "<a:dance:123456789012345678> 😀", want: 2},
		{name: "custom emoji lookalike", input: "<:pepe:12>", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountEmoji(tt.input))
		})
	}
}

func TestVisualLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "ascii", input: "hello", want: 5},
		{name: "flag counts once", input: "a🇺🇸b", want: 3},
		{name: "zwj family counts once", input: "👨‍👩‍👧", want: 1},
		{name: "combining accent", input: "é", want: 1},
		{name: "custom emoji counts once", input: "hi <:pepe:123456789012345678>", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisualLength(tt.input))
		})
	}
}

func TestVeilRequest_ValidateCountsSequences(t *testing.T) {
	flags := VeilRequest{GuildID: 1, ChannelID: 2, AuthorID: 3, Content: strings.Repeat("🇺🇸", 26)}
	assert.NoError(t, flags.Validate(), "26 flags are 26 emoji")

	families := VeilRequest{GuildID: 1, ChannelID: 2, AuthorID: 3, Content: strings.Repeat("👨‍👩‍👧", MaxVeilEmoji)}
	assert.NoError(t, families.Validate())

	tooMany := VeilRequest{GuildID: 1, ChannelID: 2, AuthorID: 3, Content: strings.Repeat("🇺🇸", MaxVeilEmoji+1)}
	assert.ErrorIs(t, tooMany.Validate(), ErrInvalidVeil)
}
