// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"

	"github.com/gin-gonic/gin"

	"trizen-careers/internal/profile"
)

// ProfileContextKey is the gin context key holding the visitor *profile.Profile.
const ProfileContextKey = "profile"

// ProfileIssuedKey is set in the gin context when the request carried no valid profile token
// and a new profile was issued for it.
const ProfileIssuedKey = "profile_issued"

// ErrorResponse type for error bodies
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for message bodies
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractProfile extracts the visitor profile from Gin context.
// It does not abort the request; instead returns an error when missing/invalid.
func ExtractProfile(c *gin.Context) (*profile.Profile, error) {
	p, _ := c.Get(ProfileContextKey)
	if p == nil {
		return nil, errors.New("Profile information not provided")
	}

	prof, ok := p.(*profile.Profile)
	if !ok {
		return nil, errors.New("Failed to assert type")
	}
	return prof, nil
}
