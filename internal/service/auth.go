package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

const tokenTTL = 365 * 24 * time.Hour

type AuthService interface {
	GenerateToken(user entity.User) (string, error)
	Verify(token string) (entity.User, error)
}

type authServiceImpl struct {
	secretKey string
	now       func() time.Time
}

func NewAuthService(secretKey string) AuthService {
	return &authServiceImpl{
		secretKey: secretKey,
		now:       time.Now,
	}
}

func (that *authServiceImpl) GenerateToken(user entity.User) (string, error) {
	claims := jwt.MapClaims{}
	claims["id"] = user.ID
	claims["username"] = user.Username
	claims["email"] = user.Email
	claims["exp"] = that.now().Add(tokenTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify - checks the signature and expiry only; revoked tokens are not looked up.
func (that *authServiceImpl) Verify(tokenString string) (entity.User, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(that.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(that.now))
	if err != nil {
		return entity.User{}, fmt.Errorf("%w: %w", apperror.ErrInvalidCredential, err)
	}

	user := entity.User{
		ID:       claimString(claims["id"]),
		Username: claimString(claims["username"]),
		Email:    claimString(claims["email"]),
	}

	if user.ID == "" {
		return entity.User{}, fmt.Errorf("%w: token has no user id", apperror.ErrInvalidCredential)
	}

	return user, nil
}

// claimString - ids may be issued as numbers by other services.
func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
