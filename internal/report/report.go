// Package report provides delivery outcome sinks. A reporter receives the
// final Result of every delivery request so outcomes can be audited later.
package report

import (
	"context"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/logging"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/notify"
)

// Log writes each delivery outcome to the structured log. It is the default
// reporter when no persistence backend is configured.
type Log struct{}

func (Log) Report(_ context.Context, r notify.RecipientProfile, res notify.Result) error {
	ev := logging.Get().Info()
	if !res.Succeeded {
		ev = logging.Get().Warn()
	}
	ev.Str("delivery_id", res.ID).
		Str("email", r.Email).
		Bool("succeeded", res.Succeeded).
		Str("trail", res.Trail()).
		Msg("delivery outcome")
	return nil
}

// Multi fans a delivery outcome out to several reporters. All reporters are
// invoked even if an earlier one fails; the first error is returned.
type Multi []notify.Reporter

func (m Multi) Report(ctx context.Context, r notify.RecipientProfile, res notify.Result) error {
	var first error
	for _, rep := range m {
		if err := rep.Report(ctx, r, res); err != nil && first == nil {
			first = err
		}
	}
	return first
}
