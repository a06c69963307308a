package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

// JwtService verifies the backend-issued access tokens. The signing key is
// shared with the backend through config.
type JwtService interface {
	NewToken(user domain.User) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

// NewToken mints a token with the same claim shape the backend uses. The
// console itself never mints tokens in production; this exists for tests.
func (j *Jwt) NewToken(user domain.User) (string, error) {
	claims := jwt.MapClaims{}
	claims["uid"] = user.Id
	claims["email"] = user.Email
	claims["name"] = user.Name
	claims["role"] = user.Role
	claims["company"] = user.Company
	claims["phone"] = user.Phone
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("signing token", "error", err)
		return "", errors.New("can't create token")
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message:    fmt.Sprintf("unexpected signing method: %v", token.Header["alg"]),
				StatusCode: http.StatusUnauthorized,
			}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}
	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}
	return token, nil
}

// UserFromClaims rebuilds the user record carried inside a decoded token.
func UserFromClaims(token *jwt.Token) (*domain.User, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	user := &domain.User{Id: int64(uidFloat), Role: role}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if company, ok := claims["company"].(string); ok {
		user.Company = company
	}
	if phone, ok := claims["phone"].(string); ok {
		user.Phone = phone
	}
	return user, nil
}
