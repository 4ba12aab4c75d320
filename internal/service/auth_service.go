package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
)

// AuthService issues session tokens. Identity is asserted by the institute
// SSO in front of the API, so login only binds username and role.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	students   repository.StudentRepository
	validate   *validator.Validate
	logger     zerolog.Logger
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger, secret string, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}

	return &authService{
		students:   students,
		validate:   validate,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	if req.Role == "student" {
		student := models.Student{
			Username:     req.Username,
			Email:        req.Email,
			Department:   req.Department,
			Year:         req.Year,
			IsRegistered: true,
		}
		if _, err := s.students.Upsert(ctx, student); err != nil {
			return dto.LoginResponse{}, fmt.Errorf("register student: %w", err)
		}
	}

	expiresAt := s.now().Add(s.sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  req.Username,
		"role": req.Role,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Str("role", req.Role).Msg("session issued")

	return dto.LoginResponse{
		Token:     signed,
		Username:  req.Username,
		Role:      req.Role,
		ExpiresAt: expiresAt,
	}, nil
}
