package campaign

import (
	"context"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/errs"
)

// ErrMalformedResponse is returned when a result carries neither errors nor a media buy ID.
var ErrMalformedResponse = errs.New("create_media_buy result has neither errors nor media_buy_id")

// Submitter sends a media buy request to a sales agent.
type Submitter interface {
	CreateMediaBuy(ctx context.Context, req *api.CreateMediaBuyRequest) (*api.CreateMediaBuyResponse, error)
}

// Outcome is the resolved state of a single submission: one of
// Accepted, Rejected or Failed.
type Outcome interface {
	outcome()
}

// Accepted means the sales agent created the media buy.
type Accepted struct {
	MediaBuyID       string
	CreativeDeadline string
	PackageCount     int
	Packages         []api.CreatedPackage
}

// Rejected means the sales agent refused the request for business reasons.
type Rejected struct {
	Errors []api.Error
}

// Failed means the request never produced a business answer: it was invalid
// locally or the agent could not be reached.
type Failed struct {
	Err error
}

func (Accepted) outcome() {}
func (Rejected) outcome() {}
func (Failed) outcome()   {}

// Interpret resolves a sales agent result. A populated error collection wins
// over any other field.
func Interpret(resp *api.CreateMediaBuyResponse) Outcome {
	if resp == nil {
		return Failed{Err: errs.Transport(ErrMalformedResponse, "empty create_media_buy result")}
	}
	if len(resp.Errors) > 0 {
		return Rejected{Errors: resp.Errors}
	}
	if resp.MediaBuyID == "" {
		return Failed{Err: errs.Mark(ErrMalformedResponse, errs.ErrTransport)}
	}
	return Accepted{
		MediaBuyID:       resp.MediaBuyID,
		CreativeDeadline: resp.CreativeDeadline,
		PackageCount:     resp.PackageCount(),
		Packages:         resp.Packages,
	}
}

const (
	ExitAccepted = 0
	ExitFailed   = 1
	ExitRejected = 2
)

// ExitCode maps an outcome to a process exit status.
func ExitCode(o Outcome) int {
	switch o.(type) {
	case Accepted:
		return ExitAccepted
	case Rejected:
		return ExitRejected
	default:
		return ExitFailed
	}
}
