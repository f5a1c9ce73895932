// Package nutrition turns free text and food photos into FoodItem estimates,
// either from the OpenFoodFacts product database or from a Gemini model.
//
// OUTCOMES, NOT EMPTY LISTS:
// Every lookup returns an Outcome that says whether it worked, found nothing,
// or failed. The HTTP layer passes the distinction on as a "status" field and
// only the terminal renderer collapses "failed" into "no results".
package nutrition

import (
	"errors"

	"github.com/sakif/caloriesnap/internal/model"
)

// ErrNotConfigured is the failure reported when GEMINI_API_KEY is unset.
var ErrNotConfigured = errors.New("nutrition: estimator is not configured")

// Status summarises an outcome for clients.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Outcome is the result of a multi-item lookup.
type Outcome struct {
	Items []model.FoodItem
	Err   error
}

func (o Outcome) Status() Status {
	switch {
	case o.Err != nil:
		return StatusFailed
	case len(o.Items) == 0:
		return StatusEmpty
	default:
		return StatusOK
	}
}

// ImageOutcome is the result of analysing one photo.
type ImageOutcome struct {
	Item *model.FoodItem
	Err  error
}

func (o ImageOutcome) Status() Status {
	switch {
	case o.Err != nil:
		return StatusFailed
	case o.Item == nil:
		return StatusEmpty
	default:
		return StatusOK
	}
}

func failed(err error) Outcome {
	return Outcome{Items: []model.FoodItem{}, Err: err}
}
