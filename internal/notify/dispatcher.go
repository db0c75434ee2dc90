// Package notify tells every giver who they are giving to.
//
// A Dispatcher renders one message per edge of a completed draw and either
// prints it (dry mode) or hands it to a Transport. Delivery is best-effort:
// a failed edge does not stop the others, and every failure is reported.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dyluth/santa/internal/draw"
)

// Options configures a Dispatcher.
type Options struct {
	GameName string
	From     string
	Subject  string
	Template Template

	// Dry prints messages to Out instead of sending them
	Dry bool
	Out io.Writer

	// RedirectTo, when set, receives every message instead of the giver
	RedirectTo string

	Logger *slog.Logger
}

// Dispatcher sends draw results.
type Dispatcher struct {
	transport Transport
	renderer  *Renderer
	opts      Options
	logger    *slog.Logger
}

// Report summarizes a Notify call.
type Report struct {
	Sent    int
	Printed int
	Failed  []*DeliveryError
}

// NewDispatcher parses the template and builds a dispatcher. transport may be
// nil in dry mode.
func NewDispatcher(transport Transport, opts Options) (*Dispatcher, error) {
	if transport == nil && !opts.Dry {
		return nil, fmt.Errorf("a transport is required unless running dry")
	}
	if opts.Template == nil {
		opts.Template = FileTemplate("")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	renderer, err := NewRenderer(opts.Template)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		transport: transport,
		renderer:  renderer,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Notify sends one message per edge of cycle, in cycle order, to the giver's
// address in directory. It returns a joined error of every *DeliveryError.
func (d *Dispatcher) Notify(ctx context.Context, cycle draw.Cycle, directory map[string]string) (*Report, error) {
	report := &Report{}

	for _, edge := range cycle {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("notification interrupted: %w", err)
		}

		if err := d.Send(ctx, edge, directory); err != nil {
			var deliveryErr *DeliveryError
			if !errors.As(err, &deliveryErr) {
				deliveryErr = &DeliveryError{Giver: edge.From, Err: err}
			}
			report.Failed = append(report.Failed, deliveryErr)
			d.logger.Error("notification failed", "giver", edge.From, "error", deliveryErr.Err)
			continue
		}

		if d.opts.Dry {
			report.Printed++
		} else {
			report.Sent++
		}
	}

	if len(report.Failed) > 0 {
		errs := make([]error, 0, len(report.Failed))
		for _, f := range report.Failed {
			errs = append(errs, f)
		}
		return report, errors.Join(errs...)
	}

	return report, nil
}

// Send renders and delivers the message for a single edge.
func (d *Dispatcher) Send(ctx context.Context, edge draw.Pair, directory map[string]string) error {
	email, ok := directory[edge.From]
	if !ok || email == "" {
		return &DeliveryError{Giver: edge.From, Err: fmt.Errorf("no contact address")}
	}
	if _, ok := directory[edge.To]; !ok {
		return &DeliveryError{Giver: edge.From, Email: email, Err: fmt.Errorf("receiver '%s' is not a participant", edge.To)}
	}

	body, err := d.renderer.Render(Data{
		FromName: edge.From,
		ToName:   edge.To,
		GameName: d.opts.GameName,
	})
	if err != nil {
		return &DeliveryError{Giver: edge.From, Email: email, Err: err}
	}

	to := email
	if d.opts.RedirectTo != "" {
		to = d.opts.RedirectTo
	}

	msg := Message{
		From:    d.opts.From,
		To:      []string{to},
		Subject: d.opts.Subject,
		HTML:    body,
	}

	if d.opts.Dry {
		return d.print(msg)
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		return &DeliveryError{Giver: edge.From, Email: to, Err: err}
	}

	// The receiver is secret; log only who was notified
	d.logger.Info("notification sent", "giver", edge.From)
	return nil
}

func (d *Dispatcher) print(msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("---\n")
	b.WriteString(strings.TrimRight(msg.HTML, "\n"))
	b.WriteString("\n---\n\n")

	if _, err := io.WriteString(d.opts.Out, b.String()); err != nil {
		return fmt.Errorf("failed to print notification: %w", err)
	}
	return nil
}
