package model

// Job is a read-only entry of the static job catalog.
type Job struct {
	ID                  string   `yaml:"id" json:"id"`
	Title               string   `yaml:"title" json:"title"`
	Slug                string   `yaml:"slug" json:"slug"`
	Location            string   `yaml:"location" json:"location"`
	Type                string   `yaml:"type" json:"type"`
	Category            string   `yaml:"category" json:"category"`
	Description         string   `yaml:"description" json:"description"`
	Tags                []string `yaml:"tags" json:"tags"`
	Requirements        []string `yaml:"requirements" json:"requirements"`
	Responsibilities    []string `yaml:"responsibilities" json:"responsibilities"`
	Benefits            []string `yaml:"benefits" json:"benefits"`
	Duration            string   `yaml:"duration" json:"duration"`
	StartDate           string   `yaml:"startDate" json:"startDate"`
	ApplicationDeadline string   `yaml:"applicationDeadline" json:"applicationDeadline"`
}

// JobResponse is the response struct for a job with the visitor's application status
type JobResponse struct {
	Job
	Applied bool `json:"applied"`
}

// ToJobResponse converts Job to JobResponse
func (j Job) ToJobResponse(applied bool) JobResponse {
	return JobResponse{
		Job:     j,
		Applied: applied,
	}
}
