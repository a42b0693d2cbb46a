// Package resume ranks a batch of applicant résumés against one job posting,
// either by keyword overlap with the posting or with a trained linear model.
package resume

// Method selects how résumés are scored.
type Method string

const (
	MethodRuleBased Method = "rule_based"
	MethodMLBased   Method = "ml_based"
)

// Applicant points at one résumé file. An applicant without an ID is
// excluded from the ranking like an unreadable résumé.
type Applicant struct {
	ApplicantID string `json:"applicantId"`
	ResumePath  string `json:"resumePath"`
}

// Request is one ranking job. An empty Method means rule_based.
type Request struct {
	JobTitle        string      `json:"job_title"`
	JobDescription  string      `json:"job_description"`
	JobRequirements string      `json:"job_requirements"`
	Resumes         []Applicant `json:"resumes"`
	Method          Method      `json:"method" validate:"omitempty,oneof=rule_based ml_based"`
}

// Candidate is an applicant whose résumé yielded text.
type Candidate struct {
	ApplicantID string
	Text        string
}

type Ranking struct {
	ApplicantID string  `json:"applicantId"`
	Score       float64 `json:"score"`
}

// Outcome is the result of a ranking run. NoValidResumes is set when every
// résumé was excluded; Rankings is then empty.
type Outcome struct {
	Rankings       []Ranking
	NoValidResumes bool
}
