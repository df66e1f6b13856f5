package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/logging"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/mail"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/metrics"
)

// Reporter receives the structured outcome of each delivery. The dispatcher
// performs no persistence itself.
type Reporter interface {
	Report(ctx context.Context, r RecipientProfile, res Result) error
}

// Dispatcher walks the fallback chain for one recipient and payload. It is
// stateless between Deliver calls; concurrent calls for different recipients
// are safe and share only the injected collaborators.
type Dispatcher struct {
	adapters []Adapter
	reporter Reporter

	// Now is an injectable clock for testing.
	Now func() time.Time
}

// NewDispatcher wires the fixed channel priority chain: push, email, SMS.
// reporter may be nil.
func NewDispatcher(push PushSender, transport mail.Transport, reporter Reporter) *Dispatcher {
	return &Dispatcher{
		adapters: []Adapter{
			&PushAdapter{Sender: push},
			&EmailAdapter{Transport: transport},
			&SMSAdapter{Transport: transport},
		},
		reporter: reporter,
		Now:      time.Now,
	}
}

// Deliver attempts the channels in priority order and stops at the first
// confirmed delivery: a cheaper channel that reached the user pre-empts the
// noisier ones behind it.
//
// Structurally unavailable channels are recorded as skipped, never silently
// omitted. Adapter faults become failed attempts; no error from a channel
// escapes this method. The only returned error is a caller contract
// violation on the input itself, detected before any channel is touched.
func (d *Dispatcher) Deliver(ctx context.Context, r RecipientProfile, p Payload) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{ID: uuid.New().String()}
	start := d.Now()

	for _, a := range d.adapters {
		attempt := d.attempt(ctx, a, r, p)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Outcome == OutcomeDelivered {
			res.Succeeded = true
			break
		}
	}

	metrics.ObserveDeliveryDuration(d.Now().Sub(start).Seconds())
	metrics.SetLastDelivery(d.Now())
	logging.Get().Info().
		Str("delivery", res.ID).
		Bool("succeeded", res.Succeeded).
		Str("trail", res.Trail()).
		Msg("delivery finished")

	d.report(ctx, r, res)
	return res, nil
}

// attempt runs one channel and converts its result into an Attempt record.
func (d *Dispatcher) attempt(ctx context.Context, a Adapter, r RecipientProfile, p Payload) Attempt {
	attempt := Attempt{
		ID:          uuid.New().String(),
		Channel:     a.Channel(),
		AttemptedAt: d.Now(),
	}

	if reason := a.Skip(r); reason != "" {
		attempt.Outcome = OutcomeSkipped
		attempt.Reason = reason
		metrics.IncSkipped(string(attempt.Channel))
		return attempt
	}

	target, err := a.Send(ctx, r, p)
	attempt.Target = target
	if err != nil {
		attempt.Outcome = OutcomeFailed
		attempt.Reason = err.Error()
		metrics.IncFailed(string(attempt.Channel))
		logging.Get().Warn().Err(err).
			Str("channel", string(attempt.Channel)).
			Str("target", target).
			Msg("channel attempt failed")
		return attempt
	}

	attempt.Outcome = OutcomeDelivered
	metrics.IncDelivered(string(attempt.Channel))
	return attempt
}

func (d *Dispatcher) report(ctx context.Context, r RecipientProfile, res Result) {
	if d.reporter == nil {
		return
	}
	if err := d.reporter.Report(ctx, r, res); err != nil {
		logging.Get().Warn().Err(err).Str("delivery", res.ID).Msg("failed to report delivery outcome")
	}
}
