package services

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	Register(dbc dbctx.Context, in RegisterInput) (*types.User, error)
	Login(dbc dbctx.Context, email, password string) (string, *types.User, error)
	// ParseToken validates a bearer token and returns the user id it carries.
	ParseToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret string
	accessTTL time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecret string, accessTTL time.Duration) AuthService {
	return &authService{
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

func (s *authService) Register(dbc dbctx.Context, in RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Validationf("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, errors.Validationf("password must be at least 8 characters")
	}
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, errors.Validationf("first and last name are required")
	}

	exists, err := s.userRepo.EmailExists(dbc, email)
	if err != nil {
		return nil, errors.Storagef("checking email: %v", err)
	}
	if exists {
		return nil, errors.Validationf("email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Storagef("hashing password: %v", err)
	}

	rows, err := s.userRepo.Create(dbc, []*types.User{{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: first,
		LastName:  last,
	}})
	if err != nil {
		return nil, errors.Storagef("creating user: %v", err)
	}
	return rows[0], nil
}

func (s *authService) Login(dbc dbctx.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, errors.Validationf("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return "", nil, errors.Storagef("loading user: %v", err)
	}
	if user == nil {
		return "", nil, errors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, errors.ErrUnauthorized
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, errors.Storagef("signing token: %v", err)
	}
	return signed, user, nil
}

func (s *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrUnauthorized
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.ErrUnauthorized
	}
	return id, nil
}
