package services

import (
	"context"
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bounty-board/models"
)

// Notifier tells the community chat about bounty events.
type Notifier interface {
	BountyChanged(ctx context.Context, b models.Bounty, activity models.Activity) error
	BountyOverdue(ctx context.Context, b models.Bounty) error
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	printer *message.Printer
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{printer: message.NewPrinter(language.English)}
}

// FormatReward renders a reward like "1,250.50 USDC".
func (n *LogNotifier) FormatReward(r models.Reward) string {
	return n.printer.Sprintf("%.*f %s", r.Scale, r.Unscaled(), r.Currency)
}

func (n *LogNotifier) BountyChanged(_ context.Context, b models.Bounty, activity models.Activity) error {
	log.Printf("📣 [NOTIFY] %s: %q (%s) is %s, reward %s",
		activity, b.Title, b.ID, b.Status, n.FormatReward(b.Reward))
	return nil
}

func (n *LogNotifier) BountyOverdue(_ context.Context, b models.Bounty) error {
	log.Printf("⏰ [NOTIFY] overdue: %q (%s) was due %s, status %s",
		b.Title, b.ID, b.DueAt.Format("2006-01-02"), b.Status)
	return nil
}
