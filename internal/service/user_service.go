package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, centerID, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateUserRequest represents payload for creating staff accounts.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=SUPERADMIN ADMIN ACCOUNTANT TEACHER"`
	Active   bool            `json:"active"`
	Password string          `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest payload for updating users.
type UpdateUserRequest struct {
	FullName string          `json:"full_name" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required,oneof=SUPERADMIN ADMIN ACCOUNTANT TEACHER"`
	Active   *bool           `json:"active"`
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated users of the actor's center.
func (s *UserService) List(ctx context.Context, actor models.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}
	return users, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a user of the actor's center.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	return s.load(ctx, actor, id)
}

// Create adds a new staff account to the actor's center.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}
	if err := s.guardRole(actor, req.Role); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internalError(err, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		CenterID:     actor.CenterID,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       req.Active,
		PasswordHash: string(passwordHash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, internalError(err, "failed to create user")
	}

	entry := auditEntry(actor, models.AuditActionUserCreate, "users", user.ID)
	entry.NewValues = auditPayload(map[string]interface{}{"id": user.ID, "email": user.Email, "role": user.Role})
	s.audit(ctx, entry)
	return user, nil
}

// Update modifies the user attributes.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update payload")
	}
	if err := s.guardRole(actor, req.Role); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	entry := auditEntry(actor, models.AuditActionUserUpdate, "users", user.ID)
	entry.OldValues = auditPayload(map[string]interface{}{"role": user.Role, "active": user.Active})

	user.FullName = strings.TrimSpace(req.FullName)
	user.Role = req.Role
	if req.Active != nil {
		if !*req.Active && user.ID == actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot deactivate your own account")
		}
		user.Active = *req.Active
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, internalError(err, "failed to update user")
	}

	entry.NewValues = auditPayload(map[string]interface{}{"role": user.Role, "active": user.Active})
	s.audit(ctx, entry)
	return user, nil
}

// ToggleActive flips the active flag of a user.
func (s *UserService) ToggleActive(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	active := !user.Active
	return s.Update(ctx, actor, id, UpdateUserRequest{FullName: user.FullName, Role: user.Role, Active: &active})
}

// Delete performs a soft delete (inactive) on a user.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if id == actor.UserID {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete your own account")
	}
	user, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete user")
	}

	entry := auditEntry(actor, models.AuditActionUserDelete, "users", user.ID)
	entry.OldValues = auditPayload(map[string]interface{}{"active": user.Active})
	entry.NewValues = auditPayload(map[string]interface{}{"active": false})
	s.audit(ctx, entry)
	return nil
}

func (s *UserService) load(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	if user.CenterID != actor.CenterID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// guardRole keeps center admins from minting superadmins.
func (s *UserService) guardRole(actor models.Actor, role models.UserRole) error {
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only superadmins can grant the superadmin role")
	}
	return nil
}

func (s *UserService) audit(ctx context.Context, entry *models.AuditLog) {
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

