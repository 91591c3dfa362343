package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/you/emrsvc/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// UserServiceImpl implements domain.UserService
type UserServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	audit       domain.AuditLogger
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, sessionRepo domain.SessionRepository, audit domain.AuditLogger) domain.UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		audit:       audit,
	}
}

// GetProfile implements domain.UserService
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile implements domain.UserService
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := []string{}
	if upd.FirstName != nil {
		name := strings.TrimSpace(*upd.FirstName)
		if name == "" {
			return nil, &domain.RequiredFieldError{Field: "firstName"}
		}
		user.FirstName = name
		changed = append(changed, "firstName")
	}
	if upd.LastName != nil {
		name := strings.TrimSpace(*upd.LastName)
		if name == "" {
			return nil, &domain.RequiredFieldError{Field: "lastName"}
		}
		user.LastName = name
		changed = append(changed, "lastName")
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email == "" {
			return nil, &domain.RequiredFieldError{Field: "email"}
		}
		if email != user.Email {
			other, err := s.userRepo.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, domain.ErrEmailInUse
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, fmt.Errorf("failed to look up email: %w", err)
			}
			user.Email = email
			changed = append(changed, "email")
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.ProfileUpdatedEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("fields", changed))
	return user, nil
}

// SetAvatar implements domain.UserService
func (s *UserServiceImpl) SetAvatar(ctx context.Context, userID, url string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Avatar = url
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return user, nil
}

// ListUsers implements domain.UserService
func (s *UserServiceImpl) ListUsers(ctx context.Context, q domain.UserQuery) (*domain.UserPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	q.Search = strings.TrimSpace(q.Search)

	users, total, err := s.userRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &domain.UserPage{
		Users: users,
		Pagination: domain.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		},
	}, nil
}

// GetUser implements domain.UserService
func (s *UserServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// DeleteUser implements domain.UserService. The last active admin cannot be removed.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleAdmin && user.IsActive {
		admins, err := s.userRepo.CountActiveAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserDeletedEvent, userID).WithEmail(user.Email))
	return nil
}
