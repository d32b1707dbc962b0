package model

import "github.com/lib/pq"

// SchemaVariant selects the field shape of an application draft.
type SchemaVariant string

const (
	// VariantStandard is the internship schema used by most jobs
	VariantStandard SchemaVariant = "standard-internship"
	// VariantSocialMedia is the richer schema for social media internships
	VariantSocialMedia SchemaVariant = "social-media-intern"
)

// CommonFields are collected for every job regardless of variant
type CommonFields struct {
	FullName             string `json:"fullName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Location             string `json:"location"`
	PortfolioURL         string `json:"portfolioUrl"`
	LinkedInProfile      string `json:"linkedinProfile"`
	ResumeLink           string `json:"resumeLink"`
	EducationStatus      string `json:"educationStatus"`
	DegreeDiscipline     string `json:"degreeDiscipline"`
	InternshipExperience string `json:"internshipExperience"`
	Motivation           string `json:"motivation"`
	Duration             string `json:"duration"`
}

// StandardFields extend CommonFields for the standard internship variant
type StandardFields struct {
	ResearchPapers string `json:"researchPapers"`
	AIMLProjects   string `json:"aiMlProjects"`
}

// SocialMediaFields extend CommonFields for the social media intern variant
type SocialMediaFields struct {
	Platforms       pq.StringArray `json:"platforms"`
	Skills          pq.StringArray `json:"skills"`
	ExpectedStipend string         `json:"expectedStipend"`
	StartDate       string         `json:"startDate"`
	WorkPreference  string         `json:"workPreference"`
	WorkSampleLink  string         `json:"workSampleLink"`
}

// ApplicationDraft is the payload sent to the application intake endpoint.
// Exactly one of StandardFields and SocialMediaFields is set, matching Variant.
type ApplicationDraft struct {
	JobID   string        `json:"jobId"`
	Variant SchemaVariant `json:"variant"`
	CommonFields
	*StandardFields
	*SocialMediaFields
}
