package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorVeil    = 0x2B2D31
)

// UI constants
const (
	MaxButtonsPerRow  = 5
	MaxActionRows     = 5
	MaxSelectOptions  = 25
	MaxSelectLabelLen = 100
)

// RedactedAuthor replaces the author's name until the veil is unveiled
const RedactedAuthor = "█████"
