package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles the manager's user administration
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeFor time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new user service. Deactivated users have their
// tokens revoked through blacklist, which may be nil.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *UserService {
	s := &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		logger:    logger,
	}
	if jwtService != nil {
		s.revokeFor = jwtService.GetRefreshTokenExpiration()
	}
	return s
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrUsernameTaken
	}

	user, err := identity.NewUser(username, input.Password, input.FullName, identity.Role(input.Role))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	info := ToUserInfo(user)
	return &info, nil
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// List returns users ordered by username
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserInfo, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "username"
	domainFilter.OrderDir = "asc"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]UserInfo, len(users))
	for i := range users {
		infos[i] = ToUserInfo(&users[i])
	}
	return infos, total, nil
}

// Activate re-enables a user and clears any lockout
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Activate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User activated", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// Deactivate disables a user and revokes their tokens. A manager cannot
// deactivate their own account.
func (s *UserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) (*UserInfo, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	if s.blacklist != nil && s.revokeFor > 0 {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, id.String(), s.revokeFor); err != nil {
			s.logger.Error("Failed to revoke tokens of deactivated user", zap.Error(err))
		}
	}

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// EnsureBootstrapManager creates the first manager when no user exists yet.
// It returns true when an account was created.
func (s *UserService) EnsureBootstrapManager(ctx context.Context, username, password, fullName string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	count, err := s.userRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		FullName: fullName,
		Role:     string(identity.RoleManager),
	}); err != nil {
		return false, err
	}
	s.logger.Warn("Bootstrap manager account created, change its password",
		zap.String("username", username))
	return true, nil
}
