package auth_service

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

const defaultTokenTTL = 24 * time.Hour

// CreateToken from Claims to JWT. The ttl is given in seconds, 0 means one day.
func CreateToken(claims jwt.MapClaims, secret string, ttl int) (string, error) {
	now := time.Now()
	duration := defaultTokenTTL
	if ttl > 0 {
		duration = time.Duration(ttl) * time.Second
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(duration).Unix()
	// create the token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Sign and get the complete encoded token as string
	return token.SignedString([]byte(secret))
}

// ParseToken from JWT to Claims
func ParseToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Don't forget to validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if token == nil {
		return jwt.MapClaims{}, errors.New("Invalid token")
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	if err == nil {
		err = errors.New("Invalid token")
	}
	return jwt.MapClaims{}, err
}

// SubjectID reads the numeric sub claim
func SubjectID(claims jwt.MapClaims) (uint64, bool) {
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 {
			return 0, false
		}
		return uint64(sub), true
	}
	return 0, false
}
