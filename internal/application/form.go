package application

import (
	"strings"
	"sync"

	"github.com/lib/pq"

	"trizen-careers/internal/model"
)

// Form is the in-progress application of one visitor for one job.
type Form struct {
	job    model.Job
	schema Schema

	mu        sync.Mutex
	values    map[string]string
	multi     map[string][]string
	errors    FieldErrorMap
	notice    string
	inFlight  bool
	submitted bool
}

// State is a snapshot of a Form.
type State struct {
	JobID     string                 `json:"jobId"`
	JobTitle  string                 `json:"jobTitle"`
	Variant   model.SchemaVariant    `json:"variant"`
	Fields    []Field                `json:"fields"`
	Values    map[string]interface{} `json:"values"`
	Errors    FieldErrorMap          `json:"errors"`
	Notice    string                 `json:"notice,omitempty"`
	InFlight  bool                   `json:"inFlight"`
	Submitted bool                   `json:"submitted"`
}

// NewForm creates an empty form for job. A non-empty email pre-fills the email field.
func NewForm(job model.Job, email string) *Form {
	f := &Form{
		job:    job,
		schema: SchemaFor(job),
		values: make(map[string]string),
		multi:  make(map[string][]string),
		errors: make(FieldErrorMap),
	}
	if email != "" {
		f.values[FieldEmail] = email
	}
	return f
}

// Job returns the job the form applies to.
func (f *Form) Job() model.Job {
	return f.job
}

// Schema returns the form schema.
func (f *Form) Schema() Schema {
	return f.schema
}

func (f *Form) editableLocked() error {
	switch {
	case f.submitted:
		return ErrAlreadySubmitted
	case f.inFlight:
		return ErrSubmissionInFlight
	}
	return nil
}

// Set stores a single value field and clears its error.
func (f *Form) Set(name, value string) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return ErrUnknownField
	}
	if field.Multi() {
		return ErrWrongFieldKind
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	f.values[name] = value
	delete(f.errors, name)
	return nil
}

// SetMulti stores the selection of a multi select field and clears its error.
func (f *Form) SetMulti(name string, values []string) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return ErrUnknownField
	}
	if !field.Multi() {
		return ErrWrongFieldKind
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	f.multi[name] = append([]string(nil), values...)
	delete(f.errors, name)
	return nil
}

// Blur validates one field as focus leaves it. It returns the message now shown for the field.
func (f *Form) Blur(name string) (string, error) {
	field, ok := f.schema.Field(name)
	if !ok {
		return "", ErrUnknownField
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitted {
		return "", ErrAlreadySubmitted
	}

	msg := ValidateField(field, f.values[name], f.multi[name])
	if msg == "" {
		delete(f.errors, name)
	} else {
		f.errors[name] = msg
	}
	return msg, nil
}

// Validate runs every client side check and replaces the error map with the result.
func (f *Form) Validate() FieldErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = f.validateLocked()
	return f.errors.clone()
}

func (f *Form) validateLocked() FieldErrorMap {
	errs := make(FieldErrorMap)
	for _, field := range f.schema.Fields {
		if msg := ValidateField(field, f.values[field.Name], f.multi[field.Name]); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() FieldErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.clone()
}

// Submitted reports whether the form was submitted successfully.
func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// Draft assembles the typed application payload from the current values.
func (f *Form) Draft() model.ApplicationDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftLocked()
}

func (f *Form) draftLocked() model.ApplicationDraft {
	v := func(name string) string {
		return strings.TrimSpace(f.values[name])
	}

	d := model.ApplicationDraft{
		JobID:   f.job.ID,
		Variant: f.schema.Variant,
		CommonFields: model.CommonFields{
			FullName:             v(FieldFullName),
			Email:                v(FieldEmail),
			Phone:                v(FieldPhone),
			Location:             v(FieldLocation),
			PortfolioURL:         v(FieldPortfolioURL),
			LinkedInProfile:      v(FieldLinkedInProfile),
			ResumeLink:           v(FieldResumeLink),
			EducationStatus:      v(FieldEducationStatus),
			DegreeDiscipline:     v(FieldDegreeDiscipline),
			InternshipExperience: v(FieldInternshipExperience),
			Motivation:           v(FieldMotivation),
			Duration:             v(FieldDuration),
		},
	}

	switch f.schema.Variant {
	case model.VariantSocialMedia:
		d.SocialMediaFields = &model.SocialMediaFields{
			Platforms:       pq.StringArray(append([]string{}, f.multi[FieldPlatforms]...)),
			Skills:          pq.StringArray(append([]string{}, f.multi[FieldSkills]...)),
			ExpectedStipend: v(FieldExpectedStipend),
			StartDate:       v(FieldStartDate),
			WorkPreference:  v(FieldWorkPreference),
			WorkSampleLink:  v(FieldWorkSampleLink),
		}
	default:
		d.StandardFields = &model.StandardFields{
			ResearchPapers: v(FieldResearchPapers),
			AIMLProjects:   v(FieldAIMLProjects),
		}
	}
	return d
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := make(map[string]interface{}, len(f.schema.Fields))
	for _, field := range f.schema.Fields {
		if field.Multi() {
			values[field.Name] = append([]string{}, f.multi[field.Name]...)
		} else {
			values[field.Name] = f.values[field.Name]
		}
	}

	return State{
		JobID:     f.job.ID,
		JobTitle:  f.job.Title,
		Variant:   f.schema.Variant,
		Fields:    f.schema.Fields,
		Values:    values,
		Errors:    f.errors.clone(),
		Notice:    f.notice,
		InFlight:  f.inFlight,
		Submitted: f.submitted,
	}
}

// begin starts a submission attempt: it clears previous errors, validates locally and marks the
// form in flight. It returns the draft to send.
func (f *Form) begin() (model.ApplicationDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return model.ApplicationDraft{}, err
	}

	f.notice = ""
	f.errors = f.validateLocked()
	if len(f.errors) > 0 {
		return model.ApplicationDraft{}, &FieldValidationError{Fields: f.errors.clone()}
	}

	f.inFlight = true
	return f.draftLocked(), nil
}

// fail ends a submission attempt that did not go through. The draft is kept.
func (f *Form) fail(fields FieldErrorMap, notice string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight = false
	f.notice = notice
	for k, v := range fields {
		f.errors[k] = v
	}
}

// requireAuth records the login notice without touching the draft.
func (f *Form) requireAuth() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = ErrAuthRequired.Error()
}

// complete moves the form to its terminal submitted state and discards the draft.
func (f *Form) complete() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight = false
	f.submitted = true
	f.notice = ""
	f.errors = make(FieldErrorMap)
	f.values = make(map[string]string)
	f.multi = make(map[string][]string)
}
