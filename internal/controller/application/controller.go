// Package application provides HTTP handlers for job application operations.
package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trizen-careers/internal/application"
	"trizen-careers/internal/catalog"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	Catalog   *catalog.Catalog
	Submitter *application.Submitter
}

// NewApplicationController creates a new instance of ApplicationController.
func NewApplicationController(cat *catalog.Catalog, submitter *application.Submitter) *ApplicationController {
	return &ApplicationController{
		Catalog:   cat,
		Submitter: submitter,
	}
}

// FormErrorResponse is the error body of form operations. Code and Fields are set for
// submission errors.
type FormErrorResponse struct {
	Error     string                    `json:"error"`
	Code      string                    `json:"code,omitempty"`
	Fields    application.FieldErrorMap `json:"fields,omitempty"`
	Retryable bool                      `json:"retryable,omitempty"`
}

// FieldValue is the request body of a field edit. Values is used for multi select fields.
type FieldValue struct {
	Value  *string  `json:"value"`
	Values []string `json:"values"`
}

// BlurResponse is the result of validating one field.
type BlurResponse struct {
	Field string `json:"field"`
	Error string `json:"error"`
	Valid bool   `json:"valid"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	application.Outcome
	EmailError     string `json:"emailError,omitempty"`
	EmailErrorCode string `json:"emailErrorCode,omitempty"`
}

// OpenApplicationHandler starts a fresh application for a job, discarding any previous draft.
// @Summary Open application form
// @Tags Application
// @Produce json
// @Param X-Profile-Token header string false "Profile token"
// @Param jobId path string true "Job id"
// @Success 201 {object} application.State "Empty form with schema"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Router /applications/{jobId} [post]
func (ac *ApplicationController) OpenApplicationHandler(c *gin.Context) {
	p, err := utilities.ExtractProfile(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, ok := ac.Catalog.FindByID(c.Param("jobId"))
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: "Job not found",
		})
		return
	}

	if p.Applied.IsApplied(job.ID) {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "You have already applied to this job",
		})
		return
	}

	f := p.OpenForm(job)
	c.JSON(http.StatusCreated, f.State())
}

// GetApplicationHandler returns the state of the open application.
// @Summary Get application form
// @Tags Application
// @Produce json
// @Param jobId path string true "Job id"
// @Success 200 {object} application.State
// @Failure 404 {object} utilities.ErrorResponse "No open application"
// @Router /applications/{jobId} [get]
func (ac *ApplicationController) GetApplicationHandler(c *gin.Context) {
	_, f, ok := openForm(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.State())
}

// SetFieldHandler edits one field and clears its error.
// @Summary Edit application field
// @Tags Application
// @Accept json
// @Produce json
// @Param jobId path string true "Job id"
// @Param field path string true "Field name"
// @Param value body FieldValue true "value for text fields, values for multi select fields"
// @Success 200 {object} application.State
// @Failure 400 {object} utilities.ErrorResponse "Invalid body, unknown field"
// @Failure 404 {object} utilities.ErrorResponse "No open application"
// @Failure 409 {object} utilities.ErrorResponse "Already submitted or submission in flight"
// @Router /applications/{jobId}/fields/{field} [put]
func (ac *ApplicationController) SetFieldHandler(c *gin.Context) {
	_, f, ok := openForm(c)
	if !ok {
		return
	}

	body := FieldValue{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	name := c.Param("field")
	var err error
	switch {
	case body.Values != nil:
		err = f.SetMulti(name, body.Values)
	case body.Value != nil:
		err = f.Set(name, *body.Value)
	default:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Request body must contain value or values",
		})
		return
	}
	if err != nil {
		respondFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, f.State())
}

// BlurFieldHandler validates a single field as focus leaves it.
// @Summary Validate application field
// @Tags Application
// @Produce json
// @Param jobId path string true "Job id"
// @Param field path string true "Field name"
// @Success 200 {object} BlurResponse
// @Failure 400 {object} utilities.ErrorResponse "Unknown field"
// @Failure 404 {object} utilities.ErrorResponse "No open application"
// @Router /applications/{jobId}/fields/{field}/blur [post]
func (ac *ApplicationController) BlurFieldHandler(c *gin.Context) {
	_, f, ok := openForm(c)
	if !ok {
		return
	}

	name := c.Param("field")
	msg, err := f.Blur(name)
	if err != nil {
		respondFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, BlurResponse{Field: name, Error: msg, Valid: msg == ""})
}

// SubmitApplicationHandler validates the form and sends it to the application intake.
// @Summary Submit application
// @Tags Application
// @Produce json
// @Param jobId path string true "Job id"
// @Success 200 {object} SubmitResponse "Submitted, emailError set when the confirmation email failed"
// @Failure 401 {object} FormErrorResponse "Not logged in"
// @Failure 404 {object} utilities.ErrorResponse "No open application"
// @Failure 409 {object} utilities.ErrorResponse "Already submitted or submission in flight"
// @Failure 422 {object} FormErrorResponse "Invalid fields"
// @Failure 502 {object} FormErrorResponse "Intake failed, retry"
// @Router /applications/{jobId}/submit [post]
func (ac *ApplicationController) SubmitApplicationHandler(c *gin.Context) {
	p, f, ok := openForm(c)
	if !ok {
		return
	}

	out, err := ac.Submitter.Submit(c.Request.Context(), f, p.Session, p.Applied)
	if err != nil {
		respondFormError(c, err)
		return
	}

	resp := SubmitResponse{Outcome: out}
	if out.EmailErr != nil {
		resp.EmailError = out.EmailErr.Error()
		resp.EmailErrorCode = application.Code(out.EmailErr)
	}
	c.JSON(http.StatusOK, resp)
}

// DiscardApplicationHandler drops the open application, as when the visitor navigates away.
// @Summary Discard application form
// @Tags Application
// @Produce json
// @Param jobId path string true "Job id"
// @Success 200 {object} utilities.MessageResponse
// @Router /applications/{jobId} [delete]
func (ac *ApplicationController) DiscardApplicationHandler(c *gin.Context) {
	p, err := utilities.ExtractProfile(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	msg := "Application discarded"
	if !p.DiscardForm(c.Param("jobId")) {
		msg = "No open application"
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: msg})
}

// openForm writes the error response itself when it returns false.
func openForm(c *gin.Context) (*profile.Profile, *application.Form, bool) {
	p, err := utilities.ExtractProfile(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return nil, nil, false
	}

	f, ok := p.Form(c.Param("jobId"))
	if !ok {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: "No open application for this job",
		})
		return nil, nil, false
	}
	return p, f, true
}

func respondFormError(c *gin.Context, err error) {
	var fve *application.FieldValidationError
	var se *application.SubmissionError

	switch {
	case errors.Is(err, application.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, FormErrorResponse{
			Error: err.Error(),
			Code:  application.CodeAuthRequired,
		})
	case errors.As(err, &fve):
		c.JSON(http.StatusUnprocessableEntity, FormErrorResponse{
			Error:  "Please fix the highlighted fields",
			Code:   application.CodeFieldValidationFailed,
			Fields: fve.Fields,
		})
	case errors.As(err, &se):
		c.JSON(http.StatusBadGateway, FormErrorResponse{
			Error:     se.Message,
			Code:      application.CodeSubmissionFailed,
			Retryable: se.Retryable(),
		})
	case errors.Is(err, application.ErrAlreadySubmitted), errors.Is(err, application.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrUnknownField), errors.Is(err, application.ErrWrongFieldKind):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
	}
}
