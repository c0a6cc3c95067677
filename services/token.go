package services

import (
	"time"

	"campusguard/utils"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken mints a signed access token for the user. Token
// issuance normally happens in the identity service; this mirrors its
// claims for the routes here and for tests.
func GenerateAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     "campusguard",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(utils.JWTExpirationTime) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(utils.JWTSecretKey))
}
