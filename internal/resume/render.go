package resume

import (
	"errors"

	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
)

// ErrorBody is the single-document failure shape of the ranking channel.
type ErrorBody struct {
	Error string `json:"error"`
}

// Render turns a ranking result into the document written to the caller:
// the ranked list on success, otherwise an ErrorBody.
func Render(outcome Outcome, err error) any {
	switch {
	case err == nil && outcome.NoValidResumes:
		return ErrorBody{Error: "No valid resumes found"}
	case err == nil:
		if outcome.Rankings == nil {
			return []Ranking{}
		}
		return outcome.Rankings
	case errors.Is(err, apperrors.ErrInvalidMethod):
		return ErrorBody{Error: "Invalid ranking method specified"}
	case errors.Is(err, apperrors.ErrModelUnavailable):
		return ErrorBody{Error: "Trained model not available"}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return ErrorBody{Error: "Invalid request: " + err.Error()}
	default:
		return ErrorBody{Error: "Processing failed: " + err.Error()}
	}
}
