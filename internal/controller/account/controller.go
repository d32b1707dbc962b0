// Package account provides HTTP handlers for the visitor sign up, verification and login flow.
package account

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trizen-careers/internal/auth"
	"trizen-careers/internal/model"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/utilities"
)

// AccountController drives the auth flow of the visitor profile.
type AccountController struct{}

// NewAccountController creates a new instance of AccountController.
func NewAccountController() *AccountController {
	return &AccountController{}
}

type passwordInfo struct {
	Password string `json:"password"`
}

type verifyInfo struct {
	Code string `json:"code" binding:"required"`
}

type loginInfo struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PasswordCheckResponse is the live password checklist.
type PasswordCheckResponse struct {
	auth.PasswordRequirements
	Met bool `json:"met"`
}

// PolicyErrorResponse is returned when the password misses requirements.
type PolicyErrorResponse struct {
	Error        string                    `json:"error"`
	Requirements auth.PasswordRequirements `json:"requirements"`
}

// LoginResponse carries the signed in user and the flow state.
type LoginResponse struct {
	User  model.User    `json:"user"`
	State auth.Snapshot `json:"state"`
}

// PasswordCheckHandler evaluates a password against the policy without registering.
// @Summary Password checklist
// @Tags Auth
// @Accept json
// @Produce json
// @Param password body passwordInfo true "Password to check"
// @Success 200 {object} PasswordCheckResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Router /auth/password-check [post]
func (ac *AccountController) PasswordCheckHandler(c *gin.Context) {
	info := passwordInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	req := auth.CheckPassword(info.Password)
	c.JSON(http.StatusOK, PasswordCheckResponse{PasswordRequirements: req, Met: req.Met()})
}

// RegisterHandler creates the account and moves the flow to email verification.
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param registration body auth.Registration true "Sign up form"
// @Success 201 {object} auth.Snapshot "Awaiting verification"
// @Failure 400 {object} PolicyErrorResponse "Invalid body, password policy, mismatch or rejected by backend"
// @Failure 409 {object} utilities.ErrorResponse "Not allowed in the current step"
// @Failure 502 {object} utilities.ErrorResponse "Backend unreachable"
// @Router /auth/register [post]
func (ac *AccountController) RegisterHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	reg := auth.Registration{}
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if err := p.Auth.Register(c.Request.Context(), reg); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p.Auth.Snapshot())
}

// VerifyHandler submits the emailed 6 digit code.
// @Summary Verify email
// @Tags Auth
// @Accept json
// @Produce json
// @Param code body verifyInfo true "Verification code"
// @Success 200 {object} auth.Snapshot "Login form"
// @Failure 400 {object} utilities.ErrorResponse "Malformed or rejected code"
// @Failure 409 {object} utilities.ErrorResponse "Not awaiting verification"
// @Failure 502 {object} utilities.ErrorResponse "Backend unreachable"
// @Router /auth/verify [post]
func (ac *AccountController) VerifyHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	info := verifyInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if err := p.Auth.Verify(c.Request.Context(), info.Code); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Auth.Snapshot())
}

// ResendHandler requests a new verification code.
// @Summary Resend verification code
// @Tags Auth
// @Produce json
// @Success 200 {object} utilities.MessageResponse
// @Failure 409 {object} utilities.ErrorResponse "Not awaiting verification"
// @Router /auth/resend [post]
func (ac *AccountController) ResendHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	if err := p.Auth.Resend(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{
		Message: "Verification code sent to " + p.Auth.Snapshot().PendingEmail,
	})
}

// LoginHandler signs in and stores the session of the profile.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginInfo true "Email and password"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or credentials"
// @Failure 409 {object} utilities.ErrorResponse "Already logged in"
// @Failure 502 {object} utilities.ErrorResponse "Backend unreachable"
// @Router /auth/login [post]
func (ac *AccountController) LoginHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	info := loginInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	user, err := p.Auth.Login(c.Request.Context(), info.Email, info.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{User: user, State: p.Auth.Snapshot()})
}

// LogoutHandler clears the session of the profile.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} utilities.MessageResponse
// @Failure 409 {object} utilities.ErrorResponse "Request in flight"
// @Router /auth/logout [post]
func (ac *AccountController) LogoutHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	if err := p.Auth.Logout(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Logged out successfully"})
}

// ResetHandler goes back to the registration form.
// @Summary Back to sign up
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Snapshot
// @Failure 409 {object} utilities.ErrorResponse "Logged in or request in flight"
// @Router /auth/reset [post]
func (ac *AccountController) ResetHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	if err := p.Auth.Reset(); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Auth.Snapshot())
}

// ShowLoginHandler switches to the login form.
// @Summary Show login form
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Snapshot
// @Failure 409 {object} utilities.ErrorResponse "Logged in or request in flight"
// @Router /auth/show-login [post]
func (ac *AccountController) ShowLoginHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}

	if err := p.Auth.ShowLogin(); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Auth.Snapshot())
}

// StateHandler returns the auth flow state.
// @Summary Auth flow state
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.Snapshot
// @Router /auth/state [get]
func (ac *AccountController) StateHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Auth.Snapshot())
}

// SessionHandler returns whether the profile is signed in and as whom.
// @Summary Session
// @Tags Auth
// @Produce json
// @Success 200 {object} model.SessionResponse
// @Router /session [get]
func (ac *AccountController) SessionHandler(c *gin.Context) {
	p, ok := extractProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Session.Snapshot())
}

func extractProfile(c *gin.Context) (*profile.Profile, bool) {
	p, err := utilities.ExtractProfile(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return p, true
}

func respondAuthError(c *gin.Context, err error) {
	var policy *auth.PasswordPolicyError
	var remote *auth.RemoteError

	switch {
	case errors.As(err, &policy):
		c.JSON(http.StatusBadRequest, PolicyErrorResponse{
			Error:        err.Error(),
			Requirements: policy.Requirements,
		})
	case errors.As(err, &remote):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: remote.Message})
	case errors.Is(err, auth.ErrPasswordMismatch), errors.Is(err, auth.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidTransition), errors.Is(err, auth.ErrRequestInFlight):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrBackendUnavailable):
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
	}
}
