package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-options-monitor/internal/monitor/dto"
)

const maxMessageLen = 4090

// FormatAlertMessage formats an alert as a Markdown Telegram message. Roll
// suggestions are appended as a ranked list when present.
func FormatAlertMessage(reason, message string, triggeredAt time.Time, suggestions []dto.RollSuggestion) string {
	var b strings.Builder

	var icon, title string
	switch reason {
	case "roll_trigger":
		icon, title = "🔄", "Roll Window Open"
	case "profit_take":
		icon, title = "💰", "Profit Take"
	case "expiration_warning":
		icon, title = "⏳", "Expiration Warning"
	case "manual":
		icon, title = "📣", "Notification"
	default:
		icon, title = "🔔", "Alert"
	}

	b.WriteString(fmt.Sprintf("%s *%s*\n\n", icon, title))
	b.WriteString(message)
	b.WriteString("\n")

	if len(suggestions) > 0 {
		b.WriteString("\n*Roll candidates:*\n")
		for i, s := range suggestions {
			b.WriteString(fmt.Sprintf("%d. Strike %.2f exp %s (%d DTE) credit %.2f score %.1f\n",
				i+1, s.Strike, s.Expiration, s.Dte, s.NetCredit, s.Score))
		}
	}

	b.WriteString(fmt.Sprintf("\n_%s_", triggeredAt.UTC().Format("2006-01-02 15:04 MST")))

	out := b.String()
	if len(out) > maxMessageLen {
		out = out[:maxMessageLen]
	}
	return out
}

// FormatErrorAlertMessage formats an operational error notification.
func FormatErrorAlertMessage(at time.Time, message string) string {
	return fmt.Sprintf("🚨 *Dispatch Error*\n\n%s\n\n_%s_", message, at.UTC().Format("2006-01-02 15:04 MST"))
}
