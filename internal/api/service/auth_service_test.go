package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// fakeCodeSender records every dispatched confirmation code.
type fakeCodeSender struct {
	emails []string
	codes  []string
}

func (f *fakeCodeSender) SendConfirmationCode(email, code string) {
	f.emails = append(f.emails, email)
	f.codes = append(f.codes, code)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:       "test-secret",
		TokenTTL:        15 * time.Minute,
		RotateCodeOnUse: true,
	}
}

func TestSignup_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	sender := &fakeCodeSender{}
	authService := NewAuthService(mockUserRepo, sender, nil, testAuthConfig())

	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mockUserRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotNil(t, user.ConfirmationCode)
	// The code handed to the mailer is the persisted one.
	assert.Equal(t, []string{"test@example.com"}, sender.emails)
	assert.Equal(t, []string{*user.ConfirmationCode}, sender.codes)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_ReissueIsIdempotent(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	sender := &fakeCodeSender{}
	authService := NewAuthService(mockUserRepo, sender, nil, testAuthConfig())

	oldCode := "old-code"
	existing := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		Email:            "test@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: &oldCode,
	}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)
	mockUserRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotNil(t, user.ConfirmationCode)
	assert.NotEqual(t, "old-code", *user.ConfirmationCode)
	assert.Len(t, sender.codes, 1)
	// No Create call for an existing user.
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	user, err := authService.Signup(context.Background(), "me", "me@example.com")

	assert.ErrorIs(t, err, ErrReservedUsername)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestSignup_InvalidUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	user, err := authService.Signup(context.Background(), "bad name!", "test@example.com")

	assert.ErrorIs(t, err, ErrUsernameInvalid)
	assert.Nil(t, user)
}

func TestSignup_EmailBoundToOtherUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	other := &models.User{Username: "someoneelse", Email: "test@example.com"}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(other, nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_UsernameBoundToOtherEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	other := &models.User{Username: "testuser", Email: "other@example.com"}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(other, nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.ErrorIs(t, err, ErrNameInUse)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	code := "confirmation-code"
	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		Role:             models.RoleUser,
		ConfirmationCode: &code,
	}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	token, err := authService.Token(context.Background(), "testuser", "confirmation-code")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "user", claims.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestToken_RotatesCodeOnUse(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	code := "confirmation-code"
	user := &models.User{ID: "user-id", Username: "testuser", ConfirmationCode: &code}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	_, err := authService.Token(context.Background(), "testuser", "confirmation-code")

	assert.NoError(t, err)
	assert.NotEqual(t, "confirmation-code", *user.ConfirmationCode)

	// A second exchange with the spent code fails.
	_, err = authService.Token(context.Background(), "testuser", "confirmation-code")
	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	mockUserRepo.AssertExpectations(t)
}

func TestToken_RotationDisabled(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	cfg := testAuthConfig()
	cfg.RotateCodeOnUse = false
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, cfg)

	code := "confirmation-code"
	user := &models.User{ID: "user-id", Username: "testuser", ConfirmationCode: &code}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.Token(context.Background(), "testuser", "confirmation-code")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "confirmation-code", *user.ConfirmationCode)
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestToken_WrongCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	code := "right-code"
	user := &models.User{ID: "user-id", Username: "testuser", ConfirmationCode: &code}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.Token(context.Background(), "testuser", "wrong-code")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestToken_NoCodeIssued(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	user := &models.User{ID: "user-id", Username: "testuser"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.Token(context.Background(), "testuser", "anything")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, token)
}

func TestToken_UserNotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	token, err := authService.Token(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestValidateToken_Garbage(t *testing.T) {
	authService := NewAuthService(new(MockUserRepository), &fakeCodeSender{}, nil, testAuthConfig())

	claims, err := authService.ValidateToken("invalid.token.here")

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	issuer := NewAuthService(mockUserRepo, &fakeCodeSender{}, nil, testAuthConfig())

	code := "confirmation-code"
	user := &models.User{ID: "user-id", Username: "testuser", ConfirmationCode: &code}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)
	mockUserRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	token, err := issuer.Token(context.Background(), "testuser", "confirmation-code")
	assert.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "a-different-secret"
	verifier := NewAuthService(new(MockUserRepository), &fakeCodeSender{}, nil, otherCfg)

	claims, err := verifier.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
