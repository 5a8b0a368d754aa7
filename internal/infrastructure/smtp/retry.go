package smtp

import (
	"fmt"
	"log/slog"
	"time"
)

// RetryingMailer decorates any Mailer with a bounded number of attempts and
// linear backoff between them. Retry lives here, in the sender, so the
// orchestrating service never re-implements delivery policy per call site.
type RetryingMailer struct {
	next        Mailer
	maxAttempts int
	backoff     time.Duration
	sleep       func(time.Duration) // overridable in tests
}

func NewRetryingMailer(next Mailer, maxAttempts int, backoff time.Duration) *RetryingMailer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingMailer{
		next:        next,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		sleep:       time.Sleep,
	}
}

// SendEmail attempts delivery up to maxAttempts times, waiting
// attempt*backoff between tries. The last error is returned if all
// attempts fail.
func (m *RetryingMailer) SendEmail(to, subject, body string) error {
	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if err = m.next.SendEmail(to, subject, body); err == nil {
			return nil
		}
		slog.Warn("email send attempt failed", "attempt", attempt, "max", m.maxAttempts, "err", err)
		if attempt < m.maxAttempts {
			m.sleep(time.Duration(attempt) * m.backoff)
		}
	}
	return fmt.Errorf("email delivery failed after %d attempts: %w", m.maxAttempts, err)
}
