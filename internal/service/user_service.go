package service

import (
	"context"

	"github.com/Baaaki/yamdb/internal/access"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// UserInput is the admin create payload. An empty Role means user.
type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      models.Role
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context, actor *models.User, search string, page repository.Page) ([]models.User, int64, error) {
	if err := authorize(actor, access.CanManageUsers(actor)); err != nil {
		return nil, 0, err
	}
	return s.userRepo.ListUsers(ctx, search, page)
}

func (s *UserService) Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if err := authorize(actor, access.CanManageUsers(actor)); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateRole(in.Role); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, nil, in.Username, in.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("username or email is already registered")
		}
		logger.Log.Error("Failed to create user", zap.String("username", in.Username), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if err := authorize(actor, access.CanManageUsers(actor)); err != nil {
		return nil, err
	}
	return s.byUsername(ctx, username)
}

// Update is the admin path: every field including role may change.
func (s *UserService) Update(ctx context.Context, actor *models.User, username string, patch UserPatch) (*models.User, error) {
	if err := authorize(actor, access.CanManageUsers(actor)); err != nil {
		return nil, err
	}
	user, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if patch.Role != nil && !access.CanChangeRole(actor, false) {
		return nil, newError(ErrPermission, "you may not change roles")
	}
	return s.apply(ctx, user, patch)
}

// Delete soft-deletes the account; its tokens stop authenticating immediately.
func (s *UserService) Delete(ctx context.Context, actor *models.User, username string) error {
	if err := authorize(actor, access.CanManageUsers(actor)); err != nil {
		return err
	}
	user, err := s.byUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.SoftDeleteUser(ctx, user.ID); err != nil {
		logger.Log.Error("Failed to delete user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.ID.String()),
	)
	return nil
}

func (s *UserService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	if err := authorize(actor, true); err != nil {
		return nil, err
	}
	return actor, nil
}

// UpdateMe is the self-profile path. Role is read-only here and silently ignored.
func (s *UserService) UpdateMe(ctx context.Context, actor *models.User, patch UserPatch) (*models.User, error) {
	if err := authorize(actor, true); err != nil {
		return nil, err
	}
	if !access.CanChangeRole(actor, true) {
		patch.Role = nil
	}
	return s.apply(ctx, actor, patch)
}

func (s *UserService) apply(ctx context.Context, user *models.User, patch UserPatch) (*models.User, error) {
	fields := map[string]interface{}{}

	username, email := user.Username, user.Email
	if patch.Username != nil && *patch.Username != user.Username {
		if err := validateUsername(*patch.Username); err != nil {
			return nil, err
		}
		username = *patch.Username
		fields["username"] = username
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
		email = *patch.Email
		fields["email"] = email
	}
	if patch.Role != nil && *patch.Role != user.Role {
		if err := validateRole(*patch.Role); err != nil {
			return nil, err
		}
		fields["role"] = *patch.Role
	}
	if patch.FirstName != nil {
		fields["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		fields["last_name"] = *patch.LastName
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}

	if err := s.ensureUnique(ctx, user, username, email); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateUser(ctx, user, fields); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("username or email is already registered")
		}
		logger.Log.Error("Failed to update user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	updated, err := s.userRepo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, notFoundError("user")
	}
	return updated, nil
}

// ensureUnique rejects a username or email held by someone other than self.
func (s *UserService) ensureUnique(ctx context.Context, self *models.User, username, email string) error {
	other, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if other != nil && (self == nil || other.ID != self.ID) {
		return conflictError("username %q is already taken", username)
	}

	other, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && (self == nil || other.ID != self.ID) {
		return conflictError("email %q is already registered", email)
	}
	return nil
}

func (s *UserService) byUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundError("user")
	}
	return user, nil
}
