// Package notify delivers operator alerts for arbitrage findings. Alerts are
// dispatched to all registered senders (Telegram, Discord) and deduplicated
// so a persistent opportunity does not page on every tracker cycle.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// resendAfter is how long a still-open opportunity must persist before it is
// alerted again.
const resendAfter = time.Hour

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches arbitrage alerts to one or more Senders, remembering
// recently alerted opportunities by normalized title.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewNotifier creates a Notifier that will deliver to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders:  senders,
		logger:   logger.With(slog.String("component", "notifier")),
		lastSent: make(map[string]time.Time),
	}
}

// AlertArbitrage sends one alert per fresh arbitrage comparison. A
// comparison alerted within the resend window is skipped.
func (n *Notifier) AlertArbitrage(ctx context.Context, comps []domain.Comparison) error {
	if len(n.senders) == 0 {
		return nil
	}

	now := time.Now()
	var errs []string
	for i := range comps {
		c := &comps[i]
		if !c.Arbitrage {
			continue
		}
		if !n.shouldSend(c.NormalizedTitle, now) {
			continue
		}
		if err := n.dispatch(ctx, "Arbitrage detected", formatArbitrage(c)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}

// shouldSend records the send time and reports whether the opportunity is
// outside its resend window.
func (n *Notifier) shouldSend(key string, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if last, ok := n.lastSent[key]; ok && now.Sub(last) < resendAfter {
		return false
	}
	n.lastSent[key] = now
	return true
}

// dispatch iterates over all senders. Errors from individual senders are
// collected and returned combined; a single sender failure does not prevent
// delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// formatArbitrage renders one comparison as a short alert body.
func formatArbitrage(c *domain.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Question)
	if c.ArbitragePercent != nil {
		fmt.Fprintf(&b, "Profit: %.2f%%\n", *c.ArbitragePercent)
	}
	for _, m := range c.Markets {
		if len(m.Outcomes) == 0 {
			continue
		}
		o := m.Outcomes[0]
		fmt.Fprintf(&b, "%s: %s @ %.3f (%s)\n", m.Venue, o.Name, o.Price, o.AmericanOdds)
	}
	return strings.TrimRight(b.String(), "\n")
}
