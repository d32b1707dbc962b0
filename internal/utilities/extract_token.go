package utilities

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Profile token transport
const (
	ProfileTokenHeader = "X-Profile-Token"
	ProfileCookieName  = "careers_profile"
)

// ExtractProfileToken reads the profile token from the X-Profile-Token header or the profile cookie.
func ExtractProfileToken(c *gin.Context) (string, error) {
	if token := c.GetHeader(ProfileTokenHeader); token != "" {
		return token, nil
	}

	token, err := c.Cookie(ProfileCookieName)
	if err != nil || token == "" {
		return "", fmt.Errorf("No profile token provided")
	}
	return token, nil
}
