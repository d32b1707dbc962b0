package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// ProfileTokenIssuer is the issuer claim of profile tokens.
const ProfileTokenIssuer = "trizen-careers"

// ProfileTokenTTL is how long a profile token stays valid.
const ProfileTokenTTL = 180 * 24 * time.Hour

// SecretKey signs profile tokens.
var SecretKey = os.Getenv("SECRET_KEY")

// GenerateProfileToken signs a token identifying the visitor profile id.
func GenerateProfileToken(id uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    ProfileTokenIssuer,
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ProfileTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	signed, err := token.SignedString([]byte(SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidatedToken parses and verifies a profile token.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("invalid token")
		}
		return []byte(SecretKey), nil
	})
}

// ProfileID returns the profile id carried by a valid profile token.
func ProfileID(encodeToken string) (string, error) {
	token, err := ValidatedToken(encodeToken)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if claims.Issuer != ProfileTokenIssuer {
		return "", errors.New("token was not issued for a profile")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid profile id: %w", err)
	}
	return claims.Subject, nil
}
