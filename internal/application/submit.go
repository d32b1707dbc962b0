package application

import (
	"context"
	"log"
	"time"

	"trizen-careers/internal/backend"
	"trizen-careers/internal/email"
	"trizen-careers/internal/eventlog"
	"trizen-careers/internal/model"
)

// IntakeClient accepts application drafts.
type IntakeClient interface {
	SubmitApplication(ctx context.Context, token string, draft model.ApplicationDraft) (backend.Result, error)
}

// Notifier sends the confirmation email.
type Notifier interface {
	SendConfirmation(ctx context.Context, data email.Confirmation) (email.Response, error)
}

// Credentials exposes the signed in state of a visitor.
type Credentials interface {
	IsAuthenticated() bool
	Token() string
}

// AppliedMarker records jobs applied to.
type AppliedMarker interface {
	MarkApplied(ctx context.Context, jobID string) error
}

// Submitter runs the submission pipeline: intake, mark applied, confirmation email.
type Submitter struct {
	Intake       IntakeClient
	Notifier     Notifier
	CompanyName  string
	EmailTimeout time.Duration
}

// Outcome describes a successful submission.
type Outcome struct {
	JobID     string `json:"jobId"`
	Submitted bool   `json:"submitted"`
	EmailSent bool   `json:"emailSent"`
	// EmailErr is set when the confirmation email failed. The submission still succeeded.
	EmailErr *EmailDeliveryError `json:"-"`
}

// Submit sends the form. On error the draft is kept and the form stays editable.
// Errors are ErrAlreadySubmitted, ErrSubmissionInFlight, ErrAuthRequired,
// *FieldValidationError or *SubmissionError.
func (s *Submitter) Submit(ctx context.Context, f *Form, creds Credentials, tracker AppliedMarker) (Outcome, error) {
	if f.Submitted() {
		return Outcome{}, ErrAlreadySubmitted
	}
	if !creds.IsAuthenticated() {
		f.requireAuth()
		return Outcome{}, ErrAuthRequired
	}

	draft, err := f.begin()
	if err != nil {
		return Outcome{}, err
	}

	res, err := s.Intake.SubmitApplication(ctx, creds.Token(), draft)
	if err != nil {
		log.Printf("Application %s: intake call failed: %v", draft.JobID, err)
		eventlog.Record(eventlog.Error, eventlog.KindApplication, eventlog.Fail, draft.JobID, err.Error())
		f.fail(nil, GenericSubmissionMessage)
		return Outcome{}, &SubmissionError{Message: GenericSubmissionMessage, Err: err}
	}

	if !res.Success {
		fields := make(FieldErrorMap)
		for _, fe := range res.Errors {
			if fe.Field != "" {
				fields[fe.Field] = fe.Message
			}
		}
		eventlog.Record(eventlog.Warning, eventlog.KindApplication, eventlog.Fail, draft.JobID, res.Message)

		if len(fields) > 0 {
			f.fail(fields, res.Message)
			return Outcome{}, &FieldValidationError{Fields: fields, Remote: true}
		}

		msg := res.Message
		if msg == "" {
			msg = GenericSubmissionMessage
		}
		f.fail(nil, msg)
		return Outcome{}, &SubmissionError{Message: msg}
	}

	out := Outcome{JobID: draft.JobID, Submitted: true}
	eventlog.Record(eventlog.Info, eventlog.KindApplication, eventlog.Success, draft.JobID, draft.Email)

	if err := tracker.MarkApplied(ctx, draft.JobID); err != nil {
		log.Printf("Application %s: applied mark not persisted: %v", draft.JobID, err)
	}

	if err := s.sendConfirmation(ctx, f.Job(), draft); err != nil {
		out.EmailErr = &EmailDeliveryError{Err: err}
	} else if s.Notifier != nil {
		out.EmailSent = true
	}

	f.complete()
	return out, nil
}

func (s *Submitter) sendConfirmation(ctx context.Context, job model.Job, draft model.ApplicationDraft) error {
	if s.Notifier == nil {
		return nil
	}

	if s.EmailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.EmailTimeout)
		defer cancel()
	}

	_, err := s.Notifier.SendConfirmation(ctx, email.Confirmation{
		ApplicantName:  draft.FullName,
		ApplicantEmail: draft.Email,
		JobTitle:       job.Title,
		JobID:          job.ID,
		CompanyName:    s.CompanyName,
		AppliedOn:      time.Now(),
	})
	if err != nil {
		log.Printf("Application %s: confirmation email to %s failed: %v", job.ID, draft.Email, err)
		eventlog.Record(eventlog.Warning, eventlog.KindEmail, eventlog.Fail, draft.Email, err.Error())
		return err
	}

	eventlog.Record(eventlog.Info, eventlog.KindEmail, eventlog.Success, draft.Email, "confirmation for "+job.ID)
	return nil
}
