// Package application implements the job application form: variant schemas, field validation
// and the submission pipeline.
package application

import (
	"strconv"
	"strings"

	"trizen-careers/internal/model"
)

// FieldKind tells clients how to render a field.
type FieldKind string

// Field kinds
const (
	KindText        FieldKind = "text"
	KindTextArea    FieldKind = "textarea"
	KindEmail       FieldKind = "email"
	KindPhone       FieldKind = "tel"
	KindURL         FieldKind = "url"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindDate        FieldKind = "date"
	KindNumber      FieldKind = "number"
)

// Option is an allowed value of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of a schema. Rules is a validator tag.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Options  []Option  `json:"options,omitempty"`
	Rules    string    `json:"-"`
}

// Multi reports whether the field holds several values.
func (f Field) Multi() bool {
	return f.Kind == KindMultiSelect
}

// Schema is the ordered field list of a variant.
type Schema struct {
	Variant model.SchemaVariant `json:"variant"`
	Fields  []Field             `json:"fields"`
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Field names shared by every variant
const (
	FieldFullName             = "fullName"
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldLocation             = "location"
	FieldPortfolioURL         = "portfolioUrl"
	FieldLinkedInProfile      = "linkedinProfile"
	FieldResumeLink           = "resumeLink"
	FieldEducationStatus      = "educationStatus"
	FieldDegreeDiscipline     = "degreeDiscipline"
	FieldInternshipExperience = "internshipExperience"
	FieldMotivation           = "motivation"
	FieldDuration             = "duration"
)

// Standard internship fields
const (
	FieldResearchPapers = "researchPapers"
	FieldAIMLProjects   = "aiMlProjects"
)

// Social media intern fields
const (
	FieldPlatforms       = "platforms"
	FieldSkills          = "skills"
	FieldExpectedStipend = "expectedStipend"
	FieldStartDate       = "startDate"
	FieldWorkPreference  = "workPreference"
	FieldWorkSampleLink  = "workSampleLink"
)

// MotivationMinLength is the minimum length of the motivation answer.
const MotivationMinLength = 20

// StipendCeiling is the exclusive upper bound of the expected stipend.
const StipendCeiling = 1000000

var (
	educationOptions = []Option{
		{"high-school", "High School"},
		{"bachelor", "Bachelor's Degree"},
		{"master", "Master's Degree"},
		{"phd", "PhD"},
		{"other", "Other"},
	}
	durationOptions = []Option{
		{"2-months", "2 months"},
		{"3-months", "3 months"},
		{"6-months", "6 months"},
		{"flexible", "Flexible"},
	}
	workPreferenceOptions = []Option{
		{"remote", "Remote"},
		{"hybrid", "Hybrid"},
		{"onsite", "On-site"},
	}
	platformOptions = []Option{
		{"instagram", "Instagram"},
		{"facebook", "Facebook"},
		{"linkedin", "LinkedIn"},
		{"twitter", "X (Twitter)"},
		{"youtube", "YouTube"},
		{"pinterest", "Pinterest"},
	}
	skillOptions = []Option{
		{"content-writing", "Content Writing"},
		{"copywriting", "Copywriting"},
		{"graphic-design", "Graphic Design"},
		{"video-editing", "Video Editing"},
		{"photography", "Photography"},
		{"analytics", "Social Media Analytics"},
		{"community-management", "Community Management"},
	}
)

func oneOf(opts []Option) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return "oneof=" + strings.Join(values, " ")
}

func commonFields() []Field {
	return []Field{
		{Name: FieldFullName, Label: "Full Name", Kind: KindText, Required: true, Rules: "notblank"},
		{Name: FieldEmail, Label: "Email", Kind: KindEmail, Required: true, Rules: "notblank,appemail"},
		{Name: FieldPhone, Label: "Phone Number", Kind: KindPhone, Required: true, Rules: "notblank,phone"},
		{Name: FieldLocation, Label: "Current Location", Kind: KindText, Required: true, Rules: "notblank"},
		{Name: FieldPortfolioURL, Label: "Portfolio URL", Kind: KindURL, Required: true, Rules: "notblank,httpurl"},
		{Name: FieldLinkedInProfile, Label: "LinkedIn Profile", Kind: KindURL, Required: true, Rules: "notblank,linkedin"},
		{Name: FieldResumeLink, Label: "Resume Link", Kind: KindURL, Required: true, Rules: "notblank,httpurl"},
		{Name: FieldEducationStatus, Label: "Education Status", Kind: KindSelect, Required: true,
			Options: educationOptions, Rules: "notblank," + oneOf(educationOptions)},
		{Name: FieldDegreeDiscipline, Label: "Degree / Discipline", Kind: KindText},
		{Name: FieldInternshipExperience, Label: "Internship Experience", Kind: KindTextArea},
	}
}

func closingFields() []Field {
	return []Field{
		{Name: FieldDuration, Label: "Preferred Duration", Kind: KindSelect, Required: true,
			Options: durationOptions, Rules: "notblank," + oneOf(durationOptions)},
		{Name: FieldMotivation, Label: "Motivation", Kind: KindTextArea, Required: true,
			Rules: "notblank,min=" + strconv.Itoa(MotivationMinLength)},
	}
}

var schemas = map[model.SchemaVariant]Schema{
	model.VariantStandard: {
		Variant: model.VariantStandard,
		Fields: concat(
			commonFields(),
			[]Field{
				{Name: FieldResearchPapers, Label: "Research Papers", Kind: KindTextArea},
				{Name: FieldAIMLProjects, Label: "AI/ML Projects", Kind: KindTextArea},
			},
			closingFields(),
		),
	},
	model.VariantSocialMedia: {
		Variant: model.VariantSocialMedia,
		Fields: concat(
			commonFields(),
			[]Field{
				{Name: FieldPlatforms, Label: "Platforms you are active on", Kind: KindMultiSelect, Required: true,
					Options: platformOptions, Rules: "min=1,dive," + oneOf(platformOptions)},
				{Name: FieldSkills, Label: "Skills", Kind: KindMultiSelect, Required: true,
					Options: skillOptions, Rules: "min=1,dive," + oneOf(skillOptions)},
				{Name: FieldExpectedStipend, Label: "Expected Stipend (INR per month)", Kind: KindNumber,
					Rules: "omitempty,digits,stipend"},
				{Name: FieldStartDate, Label: "Earliest Start Date", Kind: KindDate, Required: true,
					Rules: "notblank,datetime=2006-01-02"},
				{Name: FieldWorkPreference, Label: "Work Preference", Kind: KindSelect, Required: true,
					Options: workPreferenceOptions, Rules: "notblank," + oneOf(workPreferenceOptions)},
				{Name: FieldWorkSampleLink, Label: "Work Sample Link", Kind: KindURL, Rules: "omitempty,httpurl"},
			},
			closingFields(),
		),
	},
}

// variantByCategory maps a job category to its schema. Unlisted categories use the standard schema.
var variantByCategory = map[string]model.SchemaVariant{
	"Social Media": model.VariantSocialMedia,
}

// VariantFor returns the schema variant that applies to job.
func VariantFor(job model.Job) model.SchemaVariant {
	if v, ok := variantByCategory[job.Category]; ok {
		return v
	}
	return model.VariantStandard
}

// SchemaFor returns the schema that applies to job.
func SchemaFor(job model.Job) Schema {
	return schemas[VariantFor(job)]
}

func concat(parts ...[]Field) []Field {
	var out []Field
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
