// Package worker consumes delivery requests from NATS and runs them through
// the dispatcher. It owns the per-request deadline; the delivery core itself
// is deadline-free.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/logging"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/notify"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/registry"
)

// Subject is the NATS subject delivery requests are published on.
const Subject = "buildmate.notify.deliver"

// DeliveryRequest is the queue message format. Recipient.PushEndpoint may be
// empty; the worker then resolves it from the push registration store using
// UserID.
type DeliveryRequest struct {
	UserID    string                  `json:"userId"`
	Recipient notify.RecipientProfile `json:"recipient"`
	Payload   notify.Payload          `json:"payload"`
}

// Worker subscribes to the delivery subject and dispatches each request.
type Worker struct {
	dispatcher *Dispatcher
	timeout    time.Duration

	sub *nats.Subscription
	wg  sync.WaitGroup

	// lookupRegistration is a seam for tests.
	lookupRegistration func(userID string) (registry.Registration, bool, error)
}

// Dispatcher is the subset of the notify dispatcher the worker needs.
type Dispatcher struct {
	Deliver func(ctx context.Context, r notify.RecipientProfile, p notify.Payload) (notify.Result, error)
}

// New builds a worker around the given dispatcher. timeout bounds each
// delivery request end to end.
func New(d *notify.Dispatcher, timeout time.Duration) *Worker {
	return &Worker{
		dispatcher:         &Dispatcher{Deliver: d.Deliver},
		timeout:            timeout,
		lookupRegistration: registry.Lookup,
	}
}

// Start subscribes to the delivery subject on the given connection. Messages
// are handled on NATS callback goroutines; Stop waits for in-flight handlers.
func (w *Worker) Start(nc *nats.Conn) error {
	sub, err := nc.Subscribe(Subject, func(msg *nats.Msg) {
		w.wg.Add(1)
		defer w.wg.Done()
		w.Handle(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", Subject, err)
	}
	w.sub = sub
	logging.Get().Info().Str("subject", Subject).Msg("delivery worker started")
	return nil
}

// Handle processes one raw queue message. Malformed messages are logged and
// dropped; a queue message cannot be the caller's problem to retry.
func (w *Worker) Handle(data []byte) {
	var req DeliveryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logging.Get().Error().Err(err).Msg("malformed delivery request dropped")
		return
	}

	if req.Recipient.PushEndpoint == "" && req.UserID != "" {
		if reg, ok, err := w.lookupRegistration(req.UserID); err != nil {
			logging.Get().Warn().Err(err).Str("user", req.UserID).Msg("push registration lookup failed")
		} else if ok {
			req.Recipient.PushEndpoint = reg.Endpoint
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	res, err := w.dispatcher.Deliver(ctx, req.Recipient, req.Payload)
	if err != nil {
		logging.Get().Error().Err(err).Str("user", req.UserID).Msg("delivery request rejected")
		return
	}
	logging.Get().Debug().
		Str("user", req.UserID).
		Str("delivery", res.ID).
		Bool("succeeded", res.Succeeded).
		Msg("delivery request handled")
}

// Stop unsubscribes and waits for in-flight handlers, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	if w.sub != nil {
		if err := w.sub.Drain(); err != nil {
			return fmt.Errorf("drain subscription: %w", err)
		}
	}
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
