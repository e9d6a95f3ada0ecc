package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTService issues and validates session tokens. Access and refresh
// tokens are signed with separate secrets.
type JWTService interface {
	GenerateAccessToken(claims *model.TokenClaims) (string, error)
	GenerateRefreshToken(claims *model.TokenClaims) (string, time.Time, error)
	ValidateAccessToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
	AccessTokenTTL() time.Duration
}

type Config struct {
	Secret        string        `mapstructure:"secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Expiry        time.Duration `mapstructure:"expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
}

type jwtService struct {
	cfg Config
}

func NewJWTService(cfg Config) JWTService {
	if cfg.Expiry == 0 {
		cfg.Expiry = 24 * time.Hour
	}
	if cfg.RefreshExpiry == 0 {
		cfg.RefreshExpiry = 7 * 24 * time.Hour
	}
	return &jwtService{cfg: cfg}
}

func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.cfg.Expiry
}

func (s *jwtService) GenerateAccessToken(claims *model.TokenClaims) (string, error) {
	return s.sign(claims, s.cfg.Secret, s.cfg.Expiry)
}

func (s *jwtService) GenerateRefreshToken(claims *model.TokenClaims) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.cfg.RefreshExpiry)
	token, err := s.sign(claims, s.cfg.RefreshSecret, s.cfg.RefreshExpiry)
	return token, expiresAt, err
}

func (s *jwtService) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	return s.parse(token, s.cfg.Secret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*model.TokenClaims, error) {
	return s.parse(token, s.cfg.RefreshSecret)
}

func (s *jwtService) sign(claims *model.TokenClaims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	// jti keeps two tokens for the same identity distinct even when
	// issued within the same second, so rotation can revoke precisely.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.UserID.String(),
		"role":  string(claims.Role),
		"email": claims.Email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) parse(tokenStr, secret string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	roleStr, _ := mapClaims["role"].(string)
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	email, _ := mapClaims["email"].(string)

	return &model.TokenClaims{
		UserID: userID,
		Role:   role,
		Email:  email,
	}, nil
}
