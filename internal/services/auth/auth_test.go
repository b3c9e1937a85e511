package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linkhoard/entitlements-service/internal/lib/jwt"
	"github.com/linkhoard/entitlements-service/internal/lib/password"
	"github.com/linkhoard/entitlements-service/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newMaker() *jwt.MakerImpl {
	return jwt.NewJWTMaker("test_secret_key", 15*time.Minute)
}

func TestRegister_Success(t *testing.T) {
	users := &UsersMock{}
	users.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, nil).Once()
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" && u.Role == "user" && u.PasswordHash != "secret123"
	})).Return("uuid-1", nil).Once()

	svc := NewAuthService(users, newMaker())
	uid, err := svc.Register(context.Background(), "new@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", uid)
	users.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := &UsersMock{}
	users.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{Email: "taken@example.com"}, nil).Once()

	svc := NewAuthService(users, newMaker())
	_, err := svc.Register(context.Background(), "taken@example.com", "secret123")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	users := &UsersMock{}
	users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		UUID:         "uuid-1",
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         "admin",
	}, nil).Once()

	svc := NewAuthService(users, newMaker())
	token, role, err := svc.Login(context.Background(), "user@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	email, tokenRole, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, "admin", tokenRole)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	users := &UsersMock{}
	users.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		Email:        "user@example.com",
		PasswordHash: hash,
	}, nil).Once()
	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, nil).Once()

	svc := NewAuthService(users, newMaker())

	_, _, err = svc.Login(context.Background(), "user@example.com", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "ghost@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Invalid(t *testing.T) {
	svc := NewAuthService(&UsersMock{}, newMaker())

	_, _, err := svc.ValidateToken(context.Background(), "not.a.token")
	require.Error(t, err)
}
