package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReservedUsername        = errors.New("username \"me\" is not allowed")
	ErrUsernameInvalid         = errors.New("username contains invalid characters")
	ErrNameInUse               = errors.New("username already bound to a different email")
	ErrEmailInUse              = errors.New("email already bound to a different username")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidConfirmationCode = errors.New("confirmation code does not match")
	ErrSignupThrottled         = errors.New("too many confirmation code requests")
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// CodeSender dispatches a confirmation code out of band. Implementations
// must not block the signup response; failures are the sender's problem,
// the code is already persisted by the time it is called.
type CodeSender interface {
	SendConfirmationCode(email, code string)
}

type AuthService interface {
	// Signup gets-or-creates the user for (username, email), persists a
	// fresh confirmation code and hands it to the mailer. Re-submitting the
	// identical pair is an idempotent re-issue, not a conflict.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// Token exchanges a confirmation code for a signed access token.
	Token(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the identity a token asserts.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

type authService struct {
	userRepo        repository.UserRepository
	mailer          CodeSender
	throttle        *SignupThrottle
	jwtSecret       string
	tokenTTL        time.Duration
	rotateCodeOnUse bool
}

// AuthConfig carries the handshake settings. Passed in explicitly so the
// service never reads ambient process-wide state.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	RotateCodeOnUse bool
}

func NewAuthService(userRepo repository.UserRepository, mailer CodeSender, throttle *SignupThrottle, cfg AuthConfig) AuthService {
	return &authService{
		userRepo:        userRepo,
		mailer:          mailer,
		throttle:        throttle,
		jwtSecret:       cfg.JWTSecret,
		tokenTTL:        cfg.TokenTTL,
		rotateCodeOnUse: cfg.RotateCodeOnUse,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if username == "me" {
		return nil, ErrReservedUsername
	}
	if !usernameRe.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// Pre-checks. Racy on their own; the unique indexes on username and
	// email are the storage backstop and surface as ErrConflict below.
	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if byEmail != nil && byEmail.Username != username {
		return nil, ErrEmailInUse
	}

	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if byName != nil && byName.Email != email {
		return nil, ErrNameInUse
	}

	if allowed, err := s.throttle.Allow(ctx, username, email); err != nil {
		return nil, err
	} else if !allowed {
		return nil, ErrSignupThrottled
	}

	user := byName
	if user == nil {
		user = &models.User{Username: username, Email: email, Role: models.RoleUser}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	// Persist the fresh code before dispatching it: a mailer failure must
	// never leave the stored code out of sync with the one sent.
	code := uuid.New().String()
	user.ConfirmationCode = &code
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if s.mailer != nil {
		s.mailer.SendConfirmationCode(user.Email, code)
	}
	return user, nil
}

func (s *authService) Token(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	// Exact string equality, no normalization.
	if user.ConfirmationCode == nil || *user.ConfirmationCode != confirmationCode {
		return "", ErrInvalidConfirmationCode
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", err
	}

	if s.rotateCodeOnUse {
		// Rotate on use so a leaked code dies with its first exchange.
		rotated := uuid.New().String()
		user.ConfirmationCode = &rotated
		if err := s.userRepo.Save(ctx, user); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	claims := &Claims{}
	if v, ok := mapClaims["user_id"].(string); ok {
		claims.UserID = v
	}
	if v, ok := mapClaims["username"].(string); ok {
		claims.Username = v
	}
	if v, ok := mapClaims["role"].(string); ok {
		claims.Role = v
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no identity")
	}
	return claims, nil
}
