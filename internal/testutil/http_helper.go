// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// ProfileTokenHeader mirrors the header the profile middleware reads and issues.
const ProfileTokenHeader = "X-Profile-Token"

// MakeJSONRequest is a helper function for making JSON requests in tests. A non-empty
// profileToken is sent in the profile token header. A nil body sends no payload.
func MakeJSONRequest(body gin.H, profileToken string, r http.Handler, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, endpoint, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if profileToken != "" {
		req.Header.Set(ProfileTokenHeader, profileToken)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// IssuedToken returns the profile token a response handed out, or fallback when none was issued.
func IssuedToken(rec *httptest.ResponseRecorder, fallback string) string {
	if token := rec.Header().Get(ProfileTokenHeader); token != "" {
		return token
	}
	return fallback
}
