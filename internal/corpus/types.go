// Package corpus holds the job corpus snapshot the recommender ranks against:
// the immutable Snapshot bundle, the Build step that derives it from raw job
// records, and the Cache through which the single writer publishes snapshots
// to many concurrent readers.
package corpus

// Field defaults applied once at the document-store boundary.
const (
	DefaultTitle       = "No title"
	DefaultDescription = "No description"
	NotProvided        = "Not Provided"
	UnknownCompany     = "Unknown"
)

// Company is the employer reference attached to a job.
type Company struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Job is one posting in the corpus. Jobs are never mutated once they are part
// of a snapshot.
type Job struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Salary       string   `json:"salary"`
	Location     string   `json:"location"`
	JobType      string   `json:"jobType"`
	Company      Company  `json:"company"`
}

// WithDefaults fills every empty optional field with its documented default.
func (j Job) WithDefaults() Job {
	if j.Title == "" {
		j.Title = DefaultTitle
	}
	if j.Description == "" {
		j.Description = DefaultDescription
	}
	if j.Salary == "" {
		j.Salary = NotProvided
	}
	if j.Location == "" {
		j.Location = NotProvided
	}
	if j.JobType == "" {
		j.JobType = NotProvided
	}
	if j.Company.Name == "" {
		j.Company.Name = UnknownCompany
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return j
}
