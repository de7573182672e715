package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/code-geek/ai-project-template/internal/config"
	"github.com/code-geek/ai-project-template/pkg/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewService(zap.NewNop(), db, config.JWTConfig{
		Secret:          "test-secret",
		ExpirationHours: 1,
	})
}

func register(t *testing.T, svc *Service, email, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     email,
		Username:  username,
		Password:  "s3cretpass",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.Nil(t, user.LastLogin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice@example.com", "alice")

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "alice@example.com",
		Username:  "alice2",
		Password:  "s3cretpass",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice@example.com", "alice")

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "alice2@example.com",
		Username:  "alice",
		Password:  "s3cretpass",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice@example.com", "alice")

	user, token, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, user.LastLogin)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice@example.com", "alice")

	_, _, err := svc.Authenticate(context.Background(), "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, _, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	other := newTestService(t)
	other.jwtSecret = []byte("other-secret")

	register(t, svc, "alice@example.com", "alice")
	_, token, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestGetUserNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")

	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Alicia", "Jones")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Jones", updated.LastName)

	reloaded, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", reloaded.FirstName)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "s3cretpass", "newpassword"))

	_, _, err := svc.Authenticate(context.Background(), "alice@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(context.Background(), "alice@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")

	err := svc.ChangePassword(context.Background(), user.ID, "wrongpass", "newpassword")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "alice")

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	_, err := svc.GetUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), user.ID), ErrUserNotFound)
}
