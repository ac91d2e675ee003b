package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

// Claims represents phone verification claims.
type Claims struct {
	jwt.RegisteredClaims
	MobileNumber string `json:"mobile"`
	TokenType    string `json:"typ"`
}

// JWT implements VerificationTokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a new verification token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, ttl: phoneTTL, now: time.Now}
}

var _ model.VerificationTokenManager = (*JWT)(nil)

const (
	phoneTTL  = 15 * time.Minute
	typePhone = "phone_verified"
)

// GeneratePhoneToken creates a short-lived proof that mobileNumber passed OTP.
func (j *JWT) GeneratePhoneToken(mobileNumber string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   mobileNumber,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		MobileNumber: mobileNumber,
		TokenType:    typePhone,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign phone token: %w", err)
	}

	return tokenString, nil
}

// ParsePhoneToken validates a proof and returns the verified number.
func (j *JWT) ParsePhoneToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse phone token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("phone token is invalid")
	}
	if claims.TokenType != typePhone {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.MobileNumber, nil
}
