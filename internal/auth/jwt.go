package auth

import (
	"errors"
	"time"

	"cane-backend/internal/config"
	"cane-backend/internal/models"
	"cane-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims of an access token; Role is the normalized role
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	MillID string `json:"mill_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access tokens with the configured secret
type JWTManager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewJWTManager creates a token manager from the jwt config section
func NewJWTManager(cfg *config.Config) *JWTManager {
	hours := cfg.JWT.ExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return &JWTManager{
		secret:     []byte(cfg.JWT.Secret),
		issuer:     cfg.JWT.Issuer,
		expiration: time.Duration(hours) * time.Hour,
	}
}

// GenerateToken creates a signed token carrying the user's normalized role
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	role, err := ParseRole(user.Role)
	if err != nil {
		return "", err
	}

	now := timeutil.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		MillID: user.MillID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken verifies a JWT token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user")
	}

	return claims, nil
}
