// Package text holds small string helpers shared by handlers and exports.
package text

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// Truncate shortens s to at most maxLen runes, replacing the tail with "..."
// when it does not fit.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SenderDisplayName builds a human-readable name for a Telegram user:
// "First Last", then first name alone, then "@username", then "User <id>".
func SenderDisplayName(user *models.User) string {
	if user == nil {
		return "Unknown"
	}
	switch {
	case user.FirstName != "" && user.LastName != "":
		return user.FirstName + " " + user.LastName
	case user.FirstName != "":
		return user.FirstName
	case user.Username != "":
		return "@" + user.Username
	default:
		return fmt.Sprintf("User %d", user.ID)
	}
}
