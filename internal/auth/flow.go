// Package auth implements visitor authentication: the registration, verification and login
// flow, the password policy and the signed profile tokens.
package auth

import (
	"context"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"trizen-careers/internal/backend"
	"trizen-careers/internal/email"
	"trizen-careers/internal/eventlog"
	"trizen-careers/internal/model"
)

// State of the authentication flow.
type State string

// Flow states
const (
	StateAnonymousForm        State = "AnonymousForm"
	StateAwaitingVerification State = "AwaitingVerification"
	StateLoginForm            State = "LoginForm"
	StateAuthenticated        State = "Authenticated"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Accounts is the accounts backend.
type Accounts interface {
	Register(ctx context.Context, req backend.RegisterRequest) (backend.Result, error)
	VerifyEmail(ctx context.Context, email, code string) (backend.Result, error)
	ResendCode(ctx context.Context, email string) (backend.Result, error)
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
}

// Welcomer sends the welcome email after verification.
type Welcomer interface {
	SendWelcome(ctx context.Context, clientEmail, clientName string) (email.Response, error)
}

// Session is the session store the flow signs in and out of.
type Session interface {
	IsAuthenticated() bool
	Login(ctx context.Context, token string, user model.User) error
	Logout(ctx context.Context)
}

// Registration is the sign up form.
type Registration struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
}

// Snapshot is the observable flow state.
type Snapshot struct {
	State        State  `json:"state"`
	PendingEmail string `json:"pendingEmail,omitempty"`
	InFlight     bool   `json:"inFlight"`
	LastError    string `json:"lastError,omitempty"`
}

// Flow is the authentication state machine of one visitor profile.
type Flow struct {
	accounts     Accounts
	session      Session
	welcomer     Welcomer
	emailTimeout time.Duration

	mu        sync.Mutex
	state     State
	pending   Registration
	inFlight  bool
	lastError string
}

// Option configures a Flow.
type Option func(*Flow)

// WithWelcomeEmail sends a best effort welcome email after successful verification.
func WithWelcomeEmail(w Welcomer, timeout time.Duration) Option {
	return func(f *Flow) {
		f.welcomer = w
		f.emailTimeout = timeout
	}
}

// NewFlow creates a flow starting Authenticated when session already is, AnonymousForm otherwise.
func NewFlow(accounts Accounts, session Session, opts ...Option) *Flow {
	f := &Flow{
		accounts: accounts,
		session:  session,
		state:    StateAnonymousForm,
	}
	if session.IsAuthenticated() {
		f.state = StateAuthenticated
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns the current flow state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:        f.state,
		PendingEmail: f.pending.Email,
		InFlight:     f.inFlight,
		LastError:    f.lastError,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// begin claims the flow for one remote request if the current state is one of allowed.
// check runs under the lock before anything is claimed; its error aborts without a request.
func (f *Flow) begin(check func() error, allowed ...State) (Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return Registration{}, ErrRequestInFlight
	}
	permitted := false
	for _, s := range allowed {
		if f.state == s {
			permitted = true
			break
		}
	}
	if !permitted {
		return Registration{}, ErrInvalidTransition
	}
	if check != nil {
		if err := check(); err != nil {
			f.lastError = err.Error()
			return Registration{}, err
		}
	}

	f.inFlight = true
	f.lastError = ""
	return f.pending, nil
}

// end releases the flow, moving to next when it is not empty and recording err.
func (f *Flow) end(next State, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight = false
	if next != "" {
		f.state = next
	}
	if err != nil {
		f.lastError = err.Error()
	}
}

// Register validates the form locally and creates the account. On success the flow awaits the
// emailed verification code.
func (f *Flow) Register(ctx context.Context, reg Registration) error {
	reg.Email = strings.TrimSpace(reg.Email)

	_, err := f.begin(func() error {
		if req := CheckPassword(reg.Password); !req.Met() {
			return &PasswordPolicyError{Requirements: req}
		}
		if reg.Password != reg.ConfirmPassword {
			return ErrPasswordMismatch
		}
		return nil
	}, StateAnonymousForm)
	if err != nil {
		return err
	}

	res, err := f.accounts.Register(ctx, backend.RegisterRequest{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  reg.Password,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	})
	switch {
	case err != nil:
		err = unavailable(err)
		eventlog.Record(eventlog.Error, eventlog.KindRegister, eventlog.Fail, reg.Email, err.Error())
		f.end("", err)
		return err
	case !res.Success:
		rerr := remoteError("register", res.Message, "Failed to create account. Please try again.")
		eventlog.Record(eventlog.Info, eventlog.KindRegister, eventlog.Fail, reg.Email, rerr.Message)
		f.end("", rerr)
		return rerr
	}

	eventlog.Record(eventlog.Info, eventlog.KindRegister, eventlog.Success, reg.Email, "")
	f.mu.Lock()
	f.pending = Registration{
		Username:  reg.Username,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}
	f.mu.Unlock()
	f.end(StateAwaitingVerification, nil)
	return nil
}

// Verify submits the 6 digit code. On success the flow moves to the login form.
func (f *Flow) Verify(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	pending, err := f.begin(func() error {
		if !codePattern.MatchString(code) {
			return ErrInvalidCode
		}
		return nil
	}, StateAwaitingVerification)
	if err != nil {
		return err
	}

	res, err := f.accounts.VerifyEmail(ctx, pending.Email, code)
	switch {
	case err != nil:
		err = unavailable(err)
		eventlog.Record(eventlog.Error, eventlog.KindVerify, eventlog.Fail, pending.Email, err.Error())
		f.end("", err)
		return err
	case !res.Success:
		rerr := remoteError("verify", res.Message, "Invalid verification code. Please try again.")
		eventlog.Record(eventlog.Info, eventlog.KindVerify, eventlog.Fail, pending.Email, rerr.Message)
		f.end("", rerr)
		return rerr
	}

	eventlog.Record(eventlog.Info, eventlog.KindVerify, eventlog.Success, pending.Email, "")
	f.sendWelcome(ctx, pending)

	f.mu.Lock()
	f.pending = Registration{}
	f.mu.Unlock()
	f.end(StateLoginForm, nil)
	return nil
}

// Resend asks for a new verification code. The flow keeps awaiting verification.
func (f *Flow) Resend(ctx context.Context) error {
	pending, err := f.begin(nil, StateAwaitingVerification)
	if err != nil {
		return err
	}

	res, err := f.accounts.ResendCode(ctx, pending.Email)
	switch {
	case err != nil:
		err = unavailable(err)
		eventlog.Record(eventlog.Error, eventlog.KindResend, eventlog.Fail, pending.Email, err.Error())
		f.end("", err)
		return err
	case !res.Success:
		rerr := remoteError("resend", res.Message, "Failed to resend verification code. Please try again.")
		eventlog.Record(eventlog.Info, eventlog.KindResend, eventlog.Fail, pending.Email, rerr.Message)
		f.end("", rerr)
		return rerr
	}

	eventlog.Record(eventlog.Info, eventlog.KindResend, eventlog.Success, pending.Email, "")
	f.end("", nil)
	return nil
}

// Login signs in with email and password and populates the session.
func (f *Flow) Login(ctx context.Context, emailAddr, password string) (model.User, error) {
	emailAddr = strings.TrimSpace(emailAddr)

	if _, err := f.begin(nil, StateAnonymousForm, StateLoginForm); err != nil {
		return model.User{}, err
	}

	res, err := f.accounts.Login(ctx, emailAddr, password)
	switch {
	case err != nil:
		err = unavailable(err)
		eventlog.Record(eventlog.Error, eventlog.KindLogin, eventlog.Fail, emailAddr, err.Error())
		f.end("", err)
		return model.User{}, err
	case !res.Success:
		rerr := remoteError("login", res.Message, "Invalid email or password. Please try again.")
		eventlog.Record(eventlog.Info, eventlog.KindLogin, eventlog.Fail, emailAddr, rerr.Message)
		f.end("", rerr)
		return model.User{}, rerr
	}

	if err := f.session.Login(ctx, res.Token, res.User); err != nil {
		f.end("", err)
		return model.User{}, err
	}

	eventlog.Record(eventlog.Info, eventlog.KindLogin, eventlog.Success, emailAddr, "")
	f.end(StateAuthenticated, nil)
	return res.User, nil
}

// ShowLogin switches from the registration form to the login form.
func (f *Flow) ShowLogin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.inFlight:
		return ErrRequestInFlight
	case f.state == StateAuthenticated:
		return ErrInvalidTransition
	}
	f.state = StateLoginForm
	f.lastError = ""
	return nil
}

// Reset returns to the registration form, dropping a pending registration.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.inFlight:
		return ErrRequestInFlight
	case f.state == StateAuthenticated:
		return ErrInvalidTransition
	}
	f.state = StateAnonymousForm
	f.pending = Registration{}
	f.lastError = ""
	return nil
}

// Logout clears the session and returns to the registration form.
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	f.state = StateAnonymousForm
	f.pending = Registration{}
	f.lastError = ""
	f.mu.Unlock()

	f.session.Logout(ctx)
	eventlog.Record(eventlog.Info, eventlog.KindLogout, eventlog.Success, "", "")
	return nil
}

func (f *Flow) sendWelcome(ctx context.Context, reg Registration) {
	if f.welcomer == nil {
		return
	}
	if f.emailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.emailTimeout)
		defer cancel()
	}

	name := model.User{FirstName: reg.FirstName, LastName: reg.LastName}.FullName()
	if _, err := f.welcomer.SendWelcome(ctx, reg.Email, name); err != nil {
		log.Printf("Welcome email to %s failed: %v", reg.Email, err)
		eventlog.Record(eventlog.Warning, eventlog.KindEmail, eventlog.Fail, reg.Email, err.Error())
		return
	}
	eventlog.Record(eventlog.Info, eventlog.KindEmail, eventlog.Success, reg.Email, "welcome")
}
