package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)

	// Add commas for thousands
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatCoins formats a coin amount, e.g. "1,000 coins"
func FormatCoins(coins int64) string {
	if coins == 1 || coins == -1 {
		return FormatBalance(coins) + " coin"
	}
	return FormatBalance(coins) + " coins"
}

// FormatPrice formats an amount in cents as dollars
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// UserMention formats a Discord user mention
func UserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// ChannelMention formats a Discord channel mention
func ChannelMention(channelID int64) string {
	return fmt.Sprintf("<#%d>", channelID)
}

// ParseID converts a Discord snowflake string into an int64
func ParseID(id string) (int64, error) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid Discord ID %q: %w", id, err)
	}
	return parsed, nil
}

// FormatID converts an int64 snowflake back into the string form Discord expects
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseCustomIDSuffix parses the numeric suffix of a custom ID such as "veil_guess_123"
func ParseCustomIDSuffix(customID, prefix string) (int64, error) {
	if !strings.HasPrefix(customID, prefix) {
		return 0, fmt.Errorf("custom ID %q does not start with %q", customID, prefix)
	}
	return ParseID(strings.TrimPrefix(customID, prefix))
}

// Truncate shortens s to at most max runes, adding an ellipsis when cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
