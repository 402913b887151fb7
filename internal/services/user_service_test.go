package services

import (
	"context"
	"testing"

	"cane-backend/internal/auth"
	"cane-backend/internal/config"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() *UserService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "user-test-secret"
	return NewUserService(repositories.NewMemoryUserStore(), auth.NewJWTManager(cfg))
}

func TestUserService_CreateNormalizes(t *testing.T) {
	users := newTestUserService()

	u, err := users.CreateUser(context.Background(), &models.CreateUserRequest{
		Name: " Desk ", Email: " Desk@Cane.PK ", Password: "desk123", Role: "Mill Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk", u.Name)
	assert.Equal(t, "desk@cane.pk", u.Email)
	assert.Equal(t, string(auth.RoleMillManager), u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "desk123", u.PasswordHash)

	_, err = users.CreateUser(context.Background(), &models.CreateUserRequest{
		Name: "X", Email: "x@cane.pk", Password: "secret1", Role: "guard",
	})
	assert.True(t, utils.IsValidation(err))

	_, err = users.CreateUser(context.Background(), &models.CreateUserRequest{
		Name: "X", Email: "not-an-email", Password: "123", Role: "user",
	})
	require.True(t, utils.IsValidation(err))
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	users := newTestUserService()

	u, err := users.CreateUser(ctx, &models.CreateUserRequest{
		Name: "Desk", Email: "desk@cane.pk", Password: "desk123", Role: "transporter",
	})
	require.NoError(t, err)

	resp, err := users.Login(ctx, &models.LoginRequest{Email: "desk@cane.pk", Password: "desk123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastLogin)

	_, err = users.Login(ctx, &models.LoginRequest{Email: "desk@cane.pk", Password: "nope"})
	assert.Equal(t, utils.ErrCodeUnauthorized, utils.CodeOf(err))

	_, err = users.Login(ctx, &models.LoginRequest{Email: "ghost@cane.pk", Password: "desk123"})
	assert.Equal(t, utils.ErrCodeUnauthorized, utils.CodeOf(err))

	inactive := false
	_, err = users.UpdateUser(ctx, u.ID, &models.UpdateUserRequest{
		Name: "Desk", Email: "desk@cane.pk", Role: "transporter", IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = users.Login(ctx, &models.LoginRequest{Email: "desk@cane.pk", Password: "desk123"})
	assert.Equal(t, utils.ErrCodeForbidden, utils.CodeOf(err))
}

func TestUserService_UpdateAndLoginNormalize(t *testing.T) {
	ctx := context.Background()
	users := newTestUserService()

	u, err := users.CreateUser(ctx, &models.CreateUserRequest{
		Name: "Desk", Email: "desk@cane.pk", Password: "desk123", Role: "user",
	})
	require.NoError(t, err)

	updated, err := users.UpdateUser(ctx, u.ID, &models.UpdateUserRequest{
		Name: "  Gate Desk ", Email: "  Gate@Cane.PK", Role: " mill-manager ", MillID: " mill-1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gate Desk", updated.Name)
	assert.Equal(t, "gate@cane.pk", updated.Email)
	assert.Equal(t, string(auth.RoleMillManager), updated.Role)
	assert.Equal(t, "mill-1", updated.MillID)

	resp, err := users.Login(ctx, &models.LoginRequest{Email: " GATE@cane.pk ", Password: "desk123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
}

func TestUserService_EnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	users := newTestUserService()

	first, err := users.EnsureSuperAdmin(ctx, "Root", "root@cane.pk", "first1")
	require.NoError(t, err)
	assert.Equal(t, string(auth.RoleSuperAdmin), first.Role)

	again, err := users.EnsureSuperAdmin(ctx, "Root", "root@cane.pk", "second2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = users.Login(ctx, &models.LoginRequest{Email: "root@cane.pk", Password: "second2"})
	assert.NoError(t, err)

	all, err := users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
