package services

import (
	"context"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"
)

// UserService handles accounts and login
type UserService struct {
	Repo       repositories.UserStore
	JWTManager *auth.JWTManager
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

var errBadCredentials = utils.NewAppError(utils.ErrCodeUnauthorized, "invalid email or password")

// Login checks credentials and issues a bearer token. Suspended accounts are refused.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, utils.NewAppError(utils.ErrCodeForbidden, "account suspended, contact administrator")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to issue token", err)
	}

	now := timeutil.Now()
	if err := s.Repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		utils.GetLogger().WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	user.LastLogin = &now

	return &models.AuthResponse{AccessToken: token, User: user}, nil
}

// CreateUser trims the profile and lower-cases the email before validating it
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CNIC = strings.TrimSpace(req.CNIC)
	req.Address = strings.TrimSpace(req.Address)
	req.Role = strings.TrimSpace(req.Role)
	req.MillID = strings.TrimSpace(req.MillID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to hash password", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CNIC:         req.CNIC,
		Address:      req.Address,
		PasswordHash: hash,
		Role:         string(role),
		MillID:       req.MillID,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

// UpdateUser replaces profile fields; the password changes only when given
func (s *UserService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CNIC = strings.TrimSpace(req.CNIC)
	req.Address = strings.TrimSpace(req.Address)
	req.Role = strings.TrimSpace(req.Role)
	req.MillID = strings.TrimSpace(req.MillID)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.CNIC = req.CNIC
	user.Address = req.Address
	user.Role = string(role)
	user.MillID = req.MillID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, utils.ValidationError(map[string]string{"password": "must be at least 6 characters"})
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeInternal, "failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// EnsureSuperAdmin creates the bootstrap account, or resets its password
// and reactivates it when the email is already taken
func (s *UserService) EnsureSuperAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !utils.IsNotFound(err) {
		return nil, err
	}
	if existing == nil {
		return s.CreateUser(ctx, &models.CreateUserRequest{
			Name:     name,
			Email:    email,
			Password: password,
			Role:     string(auth.RoleSuperAdmin),
		})
	}

	active := true
	return s.UpdateUser(ctx, existing.ID, &models.UpdateUserRequest{
		Name:     existing.Name,
		Email:    existing.Email,
		Phone:    existing.Phone,
		CNIC:     existing.CNIC,
		Address:  existing.Address,
		Password: password,
		Role:     string(auth.RoleSuperAdmin),
		IsActive: &active,
	})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
