package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calendar-scraper/models"
)

// Notifier sends a one-shot run summary to a Telegram chat. It is
// configured from the environment and silently disabled when the
// token or chat id is missing.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewFromEnv builds a Notifier from CAL_TG_TOKEN and CAL_TG_CHAT.
// Returns (nil, nil) when either variable is unset.
func NewFromEnv() (*Notifier, error) {
	token := os.Getenv("CAL_TG_TOKEN")
	chat := os.Getenv("CAL_TG_CHAT")
	if token == "" || chat == "" {
		return nil, nil
	}

	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CAL_TG_CHAT %q: %w", chat, err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Notifier{bot: bot, chatID: chatID}, nil
}

// SendRunSummary posts the per-run outcome totals. Failures are logged,
// not returned, since the summary is best-effort.
func (n *Notifier) SendRunSummary(dateParam string, outcomes []models.ExtractionOutcome) {
	if n == nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, SummaryText(dateParam, outcomes))
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Warning: Failed to send Telegram summary: %v\n", err)
	}
}

// SummaryText renders the run totals as a short multi-line message.
func SummaryText(dateParam string, outcomes []models.ExtractionOutcome) string {
	var success, partial, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case models.OutcomeSuccess:
			success++
		case models.OutcomePartialFailure:
			partial++
		case models.OutcomeSkipped:
			skipped++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Calendar run finished (%s)\n", dateParam)
	fmt.Fprintf(&b, "Events: %d\n", len(outcomes))
	fmt.Fprintf(&b, "Success: %d, partial: %d, skipped: %d", success, partial, skipped)
	return b.String()
}
