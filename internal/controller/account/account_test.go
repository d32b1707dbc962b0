package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizen-careers/internal/auth"
	"trizen-careers/internal/backend"
	"trizen-careers/internal/middleware"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/storage"
	"trizen-careers/internal/testutil"
)

const strongPassword = "Str0ng!pw"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.SecretKey = "account-controller-test-secret"
	m.Run()
}

func writeJSON(w http.ResponseWriter, status int, body gin.H) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// fakeAccounts accepts the code 123456 and the password strongPassword.
func fakeAccounts(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(backend.PathRegister, func(w http.ResponseWriter, r *http.Request) {
		var req backend.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			writeJSON(w, http.StatusConflict, gin.H{"success": false, "error": "Email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, gin.H{"success": true, "message": "Verification code sent"})
	})
	mux.HandleFunc(backend.PathVerifyEmail, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["code"] != "123456" {
			writeJSON(w, http.StatusBadRequest, gin.H{"success": false, "error": "Invalid verification code"})
			return
		}
		writeJSON(w, http.StatusOK, gin.H{"success": true})
	})
	mux.HandleFunc(backend.PathProfile, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gin.H{"success": true})
	})
	mux.HandleFunc(backend.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != strongPassword {
			writeJSON(w, http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, gin.H{"success": true, "data": gin.H{
			"token": "backend-token",
			"user":  gin.H{"id": "u-1", "firstName": "Asha", "lastName": "Rao", "email": req["email"]},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newRouter(t *testing.T, backendURL string) (*gin.Engine, string) {
	t.Helper()
	reg := profile.NewRegistry(storage.NewMemoryStore(), backend.NewClient(backendURL, time.Second))
	ac := NewAccountController()

	r := gin.New()
	api := r.Group("/", middleware.ProfileIdentity(reg))
	api.POST("/auth/password-check", ac.PasswordCheckHandler)
	api.POST("/auth/register", ac.RegisterHandler)
	api.POST("/auth/verify", ac.VerifyHandler)
	api.POST("/auth/resend", ac.ResendHandler)
	api.POST("/auth/login", ac.LoginHandler)
	api.POST("/auth/logout", ac.LogoutHandler)
	api.POST("/auth/reset", ac.ResetHandler)
	api.POST("/auth/show-login", ac.ShowLoginHandler)
	api.GET("/auth/state", ac.StateHandler)
	api.GET("/session", ac.SessionHandler)

	token, err := auth.GenerateProfileToken(uuid.New())
	require.NoError(t, err)
	return r, token
}

func registration(email, password, confirm string) gin.H {
	return gin.H{
		"username":        "asha",
		"email":           email,
		"password":        password,
		"confirmPassword": confirm,
		"firstName":       "Asha",
		"lastName":        "Rao",
	}
}

func TestPasswordCheckHandler(t *testing.T) {
	r, token := newRouter(t, "http://127.0.0.1:0")

	rec, resp := testutil.MakeJSONRequest(gin.H{"password": "abc"}, token, r, "/auth/password-check", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["minLength"])
	assert.Equal(t, true, resp["hasLowercase"])
	assert.Equal(t, false, resp["met"])

	_, resp = testutil.MakeJSONRequest(gin.H{"password": strongPassword}, token, r, "/auth/password-check", http.MethodPost)
	assert.Equal(t, true, resp["met"])
}

func TestFullAccountFlow(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, resp := testutil.MakeJSONRequest(registration("asha@example.com", strongPassword, strongPassword), token, r, "/auth/register", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, string(auth.StateAwaitingVerification), resp["state"])
	assert.Equal(t, "asha@example.com", resp["pendingEmail"])

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/auth/resend", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp["message"], "asha@example.com")

	rec, resp = testutil.MakeJSONRequest(gin.H{"code": "000000"}, token, r, "/auth/verify", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid verification code", resp["error"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"code": "123456"}, token, r, "/auth/verify", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(auth.StateLoginForm), resp["state"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"email": "asha@example.com", "password": strongPassword}, token, r, "/auth/login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", resp["user"].(map[string]interface{})["firstName"])
	assert.Equal(t, string(auth.StateAuthenticated), resp["state"].(map[string]interface{})["state"])

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/session", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["authenticated"])
	assert.Equal(t, "asha@example.com", resp["user"].(map[string]interface{})["email"])

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/auth/reset", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/auth/logout", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, resp = testutil.MakeJSONRequest(nil, token, r, "/session", http.MethodGet)
	assert.Equal(t, false, resp["authenticated"])
	assert.NotContains(t, resp, "user")

	_, resp = testutil.MakeJSONRequest(nil, token, r, "/auth/state", http.MethodGet)
	assert.Equal(t, string(auth.StateAnonymousForm), resp["state"])
}

func TestRegisterHandler_PasswordPolicy(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, resp := testutil.MakeJSONRequest(registration("asha@example.com", "weakpw", "weakpw"), token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	requirements := resp["requirements"].(map[string]interface{})
	assert.Equal(t, true, requirements["minLength"])
	assert.Equal(t, false, requirements["hasUppercase"])
	assert.Equal(t, false, requirements["hasSpecialChar"])

	_, resp = testutil.MakeJSONRequest(nil, token, r, "/auth/state", http.MethodGet)
	assert.Equal(t, string(auth.StateAnonymousForm), resp["state"])
}

func TestRegisterHandler_EmptyPassword(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, resp := testutil.MakeJSONRequest(registration("asha@example.com", "", ""), token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	requirements, ok := resp["requirements"].(map[string]interface{})
	require.True(t, ok)
	for _, name := range []string{"minLength", "hasUppercase", "hasLowercase", "hasNumber", "hasSpecialChar"} {
		assert.Equal(t, false, requirements[name], name)
	}
}

func TestRegisterHandler_Mismatch(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, resp := testutil.MakeJSONRequest(registration("asha@example.com", strongPassword, strongPassword+"x"), token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, auth.ErrPasswordMismatch.Error(), resp["error"])
}

func TestRegisterHandler_RemoteRejection(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, resp := testutil.MakeJSONRequest(registration("taken@example.com", strongPassword, strongPassword), token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", resp["error"])
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, _ := testutil.MakeJSONRequest(gin.H{"email": "not-an-email"}, token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler_BackendUnreachable(t *testing.T) {
	srv := fakeAccounts(t)
	url := srv.URL
	srv.Close()
	r, token := newRouter(t, url)

	rec, _ := testutil.MakeJSONRequest(registration("asha@example.com", strongPassword, strongPassword), token, r, "/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVerifyHandler_WrongStep(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, _ := testutil.MakeJSONRequest(gin.H{"code": "123456"}, token, r, "/auth/verify", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyHandler_MalformedCode(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)
	rec, _ := testutil.MakeJSONRequest(registration("asha@example.com", strongPassword, strongPassword), token, r, "/auth/register", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"code": "12a"}, token, r, "/auth/verify", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, auth.ErrInvalidCode.Error(), resp["error"])
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	srv := fakeAccounts(t)
	r, token := newRouter(t, srv.URL)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/auth/show-login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"email": "asha@example.com", "password": "nope"}, token, r, "/auth/login", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", resp["error"])

	_, resp = testutil.MakeJSONRequest(nil, token, r, "/session", http.MethodGet)
	assert.Equal(t, false, resp["authenticated"])
}
