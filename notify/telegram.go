package notify

import (
	"fmt"
	"log"
	"strings"

	"artwork-tracker/filter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxMessageLen = 4000

// Notifier pushes newly discovered high-confidence listings to a
// Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New creates a notifier from a bot token and target chat.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	log.Printf("Telegram notifier authorized on account %s\n", bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// NewFromBot wraps an already-connected bot, for use when the bot also
// serves commands.
func NewFromBot(bot *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// NotifyNewFinds sends one message summarizing the newly stored
// discoveries. Only results at or above minScore are included; sending
// nothing for an empty batch is deliberate.
func (n *Notifier) NotifyNewFinds(results []filter.ScoringResult, minScore float64) error {
	var strong []filter.ScoringResult
	for _, r := range results {
		if r.ConfidenceScore >= minScore {
			strong = append(strong, r)
		}
	}
	if len(strong) == 0 {
		return nil
	}

	text := FormatResults(strong)
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}
	}

	log.Printf("Sent notification for %d new finds\n", len(strong))
	return nil
}

// Send delivers a plain text message to the configured chat.
func (n *Notifier) Send(text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

// FormatResults renders scored listings for a chat message, strongest
// first (the input is already sorted by score).
func FormatResults(results []filter.ScoringResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎨 %d possible Dan Brown artwork(s) found:\n\n", len(results)))

	for i, r := range results {
		l := r.Listing
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, l.Title))
		sb.WriteString(fmt.Sprintf("   Platform: %s\n", l.Platform))
		sb.WriteString(fmt.Sprintf("   Confidence: %.1f\n", r.ConfidenceScore))

		if l.Price > 0 {
			switch l.Currency {
			case "GBP":
				sb.WriteString(fmt.Sprintf("   Price: £%.2f\n", l.Price))
			case "EUR":
				sb.WriteString(fmt.Sprintf("   Price: €%.2f\n", l.Price))
			case "USD", "":
				sb.WriteString(fmt.Sprintf("   Price: $%.2f\n", l.Price))
			default:
				sb.WriteString(fmt.Sprintf("   Price: %s %.2f\n", l.Currency, l.Price))
			}
		}
		if l.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("   Link: %s\n", l.SourceURL))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// splitMessage splits text into chunks under Telegram's message limit,
// breaking on line boundaries where possible.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			for len(line) > maxLen {
				parts = append(parts, line[:maxLen])
				line = line[maxLen:]
			}
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
