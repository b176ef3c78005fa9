package streaming

import (
	"context"
	"strings"

	"scamshield-lab/pkg/logger"
)

// RunAuditLog writes one audit entry per event that passes sub. It returns
// when ctx is done or the bus is closed, so run it in its own goroutine.
func RunAuditLog(ctx context.Context, bus *EventBus, sub *Subscription, log *logger.Logger) {
	log = log.WithComponent("audit")
	events, unsubscribe := bus.Subscribe(sub)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Warn().
				Str("event_id", ev.ID).
				Str("source", string(ev.Source)).
				Str("subject", ev.Subject).
				Str("risk_level", string(ev.RiskLevel)).
				Float64("risk_score", ev.RiskScore).
				Str("summary", strings.Join(ev.Summary, "; ")).
				Time("detected_at", ev.Timestamp).
				Msg("scam verdict")
		}
	}
}
