// Package middleware contain utilities middleware code
package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"trizen-careers/internal/auth"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/utilities"
)

// ProfileIdentity resolves the visitor profile from the profile token and stores it in the
// context. Visitors without a valid token get a new profile and token, returned in the
// X-Profile-Token header and the profile cookie, and are flagged with ProfileIssuedKey.
func ProfileIdentity(reg *profile.Registry) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		profileID, err := profileFromRequest(ctx)
		if err != nil {
			id := uuid.New()
			token, err := auth.GenerateProfileToken(id)
			if err != nil {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "Failed to issue profile token",
				})
				return
			}
			ctx.Header(utilities.ProfileTokenHeader, token)
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(utilities.ProfileCookieName, token, int(auth.ProfileTokenTTL.Seconds()), "/", "", gin.Mode() == gin.ReleaseMode, true)
			ctx.Set(utilities.ProfileIssuedKey, true)
			ctx.Set(utilities.ProfileContextKey, reg.Issue(ctx.Request.Context(), id.String()))
			ctx.Next()
			return
		}

		ctx.Set(utilities.ProfileContextKey, reg.Get(ctx.Request.Context(), profileID))
		ctx.Next()
	}
}

func profileFromRequest(ctx *gin.Context) (string, error) {
	tokenString, err := utilities.ExtractProfileToken(ctx)
	if err != nil {
		return "", err
	}

	id, err := auth.ProfileID(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Printf("Profile token expired, issuing a new profile")
		}
		return "", err
	}
	return id, nil
}
