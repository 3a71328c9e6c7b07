package triage

import (
	"context"
	"errors"
	"time"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// Assessor is the contract the conversation layer programs against. The
// default implementation is the in-process rule engine, but the interface
// leaves room for a slow text-understanding backend; Guard bounds either.
type Assessor interface {
	Assess(ctx context.Context, text string) (Assessment, error)
}

// ErrTimeout indicates the underlying assessor did not answer within the
// configured deadline. The caller receives a conservative fallback
// assessment alongside this error and may retry.
var ErrTimeout = errors.New("triage: assessment timed out")

// Fallback returns the conservative default used when assessment fails or
// times out: treat the patient as moderate urgency, never drop them.
func Fallback() Assessment {
	return Assessment{
		Score:             6,
		Color:             domain.ColorOrange,
		Category:          "Unassessed",
		RecommendedAction: "Route to the triage nurse for a manual assessment.",
		Reasoning:         "Automatic assessment was unavailable; defaulting to a cautious moderate classification.",
		Confident:         false,
	}
}

// Guard wraps an Assessor with a hard timeout. The inner call runs on its
// own goroutine so a slow backend never blocks the request worker; on
// deadline the caller gets Fallback() and ErrTimeout.
type Guard struct {
	Inner   Assessor
	Timeout time.Duration
}

type assessResult struct {
	a   Assessment
	err error
}

// Assess runs the inner assessor under the configured timeout (and any
// deadline already on ctx).
func (g Guard) Assess(ctx context.Context, text string) (Assessment, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan assessResult, 1)
	go func() {
		a, err := g.Inner.Assess(ctx, text)
		done <- assessResult{a, err}
	}()

	select {
	case res := <-done:
		return res.a, res.err
	case <-ctx.Done():
		return Fallback(), ErrTimeout
	}
}
