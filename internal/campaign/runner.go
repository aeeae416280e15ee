package campaign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/errs"
)

const stackLines = 20

// Runner drives a single media buy creation from definition to outcome.
type Runner struct {
	Submitter Submitter
	Clock     Clock
	Span      time.Duration
	// Timeout bounds the submission call. Zero means no bound beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
	Out     io.Writer
}

// Plan computes the flight window and builds the request without sending it.
// The clock is read exactly once.
func (r *Runner) Plan(def Definition) (Window, *api.CreateMediaBuyRequest, error) {
	span := r.Span
	if span <= 0 {
		span = DefaultSpan
	}
	window := ComputeWindow(r.clock().Now(), span)

	req, err := BuildRequest(window, def.BuyerRef, def.Brand, def.Packages)
	if err != nil {
		return window, nil, err
	}
	return window, req, nil
}

// Run builds, submits and interprets one media buy, writing the status
// lines to Out. It always resolves to an outcome.
func (r *Runner) Run(ctx context.Context, def Definition) Outcome {
	logger := r.logger()

	window, req, err := r.Plan(def)
	fmt.Fprintf(r.out(), "Start time: %s\n", window.StartTime())
	fmt.Fprintf(r.out(), "End time: %s\n", window.EndTime())
	if err != nil {
		logger.Warn("media buy request invalid", "buyer_ref", def.BuyerRef, "error", err)
		return r.report(Failed{Err: err})
	}

	resp, err := r.submit(ctx, req)
	if err != nil {
		logger.Error("create media buy failed", "buyer_ref", req.BuyerRef, "error", err)
		logger.Debug("create media buy failure detail", "stack", errs.ExtractStackLines(err, stackLines))
		return r.report(Failed{Err: err})
	}

	outcome := Interpret(resp)
	switch o := outcome.(type) {
	case Accepted:
		logger.Info("media buy created", "buyer_ref", req.BuyerRef, "media_buy_id", o.MediaBuyID, "packages", o.PackageCount)
	case Rejected:
		logger.Warn("media buy rejected", "buyer_ref", req.BuyerRef, "errors", len(o.Errors))
	case Failed:
		logger.Error("media buy result unusable", "buyer_ref", req.BuyerRef, "error", o.Err)
		logger.Debug("media buy result detail", "stack", errs.ExtractStackLines(o.Err, stackLines))
	}
	return r.report(outcome)
}

func (r *Runner) submit(ctx context.Context, req *api.CreateMediaBuyRequest) (*api.CreateMediaBuyResponse, error) {
	if r.Submitter == nil {
		return nil, errs.New("no submitter configured")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := r.Submitter.CreateMediaBuy(ctx, req)
	r.logger().Debug("create_media_buy round trip",
		"buyer_ref", req.BuyerRef,
		"packages", len(req.Packages),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}

func (r *Runner) report(o Outcome) Outcome {
	Report(r.out(), o)
	return o
}

func (r *Runner) clock() Clock {
	if r.Clock == nil {
		return RealClock{}
	}
	return r.Clock
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

// Report writes the human readable result lines for an outcome.
func Report(w io.Writer, o Outcome) {
	switch o := o.(type) {
	case Accepted:
		fmt.Fprintf(w, "SUCCESS: Created media buy %s\n", o.MediaBuyID)
		fmt.Fprintf(w, "Upload creatives by: %s\n", o.CreativeDeadline)
		fmt.Fprintf(w, "Packages created: %d\n", o.PackageCount)
	case Rejected:
		fmt.Fprintf(w, "ERROR: Failed to create media buy: %s\n", formatErrors(o.Errors))
	case Failed:
		fmt.Fprintf(w, "ERROR: %v\n", o.Err)
	}
}

func formatErrors(list []api.Error) string {
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
