package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/tasker-api/internal/avatar"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// SignUpInput carries the fields accepted when creating an account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UserService provides account, session and avatar operations.
type UserService interface {
	// SignUp creates the account and its first session token.
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, string, error)

	// Login checks the credentials and adds a new session token.
	// Unknown email and wrong password both yield ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Logout revokes a single token. Other sessions of the user stay valid.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every token of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateUser applies an allow-listed partial update.
	UpdateUser(ctx context.Context, userID uuid.UUID, patch Patch) (*domain.User, error)

	// DeleteUser removes the account with its tasks, tokens and avatar and
	// returns the deleted user.
	DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	SetAvatar(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) error
	ClearAvatar(ctx context.Context, userID uuid.UUID) error
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users     store.UserStore
	tasks     store.TaskStore
	avatars   store.AvatarStore
	tx        store.TxRunner
	tokens    auth.TokenService
	hasher    auth.PasswordHasher
	processor *avatar.Processor
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// UserServiceDeps groups the collaborators of UserServiceImpl.
type UserServiceDeps struct {
	Users     store.UserStore
	Tasks     store.TaskStore
	Avatars   store.AvatarStore
	Tx        store.TxRunner
	Tokens    auth.TokenService
	Hasher    auth.PasswordHasher
	Processor *avatar.Processor
	Emitter   events.EventEmitter
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(deps UserServiceDeps, logger *slog.Logger) (UserService, error) {
	if deps.Users == nil || deps.Tasks == nil || deps.Avatars == nil || deps.Tx == nil ||
		deps.Tokens == nil || deps.Hasher == nil || deps.Emitter == nil {
		return nil, errors.New("user service: all dependencies are required")
	}
	if deps.Processor == nil {
		deps.Processor = avatar.NewProcessor()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:     deps.Users,
		tasks:     deps.Tasks,
		avatars:   deps.Avatars,
		tx:        deps.Tx,
		tokens:    deps.Tokens,
		hasher:    deps.Hasher,
		processor: deps.Processor,
		emitter:   deps.Emitter,
		logger:    logger.With("component", "user_service"),
	}, nil
}

func (s *UserServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// SignUp validates and hashes the new account, stores it together with its
// first token and announces it to the mail hooks.
func (s *UserServiceImpl) SignUp(ctx context.Context, in SignUpInput) (*domain.User, string, error) {
	log := s.log(ctx)

	user, err := domain.NewUser(in.Name, in.Email, in.Password, in.Age)
	if err != nil {
		log.Debug("rejected sign up", "error", err)
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return users.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
		} else {
			log.Error("failed to save user to database",
				"error", redact.Error(err),
				"user_id", user.ID)
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user signed up", "user_id", user.ID)
	s.emit(ctx, events.UserSignedUp, user)

	return user, token, nil
}

// Login implements UserService.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := s.log(ctx)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login failed: unknown email")
			return nil, "", ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", "error", redact.Error(err))
		return nil, "", fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		log.Error("failed to store session token",
			"error", redact.Error(err),
			"user_id", user.ID)
		return nil, "", fmt.Errorf("failed to log in: %w", err)
	}

	log.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Logout implements UserService. A token that is already gone counts as
// unauthenticated.
func (s *UserServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return ErrUnauthenticated
		}
		s.log(ctx).Error("failed to revoke token",
			"error", redact.Error(err),
			"user_id", userID)
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.log(ctx).Debug("token revoked", "user_id", userID)
	return nil
}

// LogoutAll implements UserService.
func (s *UserServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.users.ClearTokens(ctx, userID)
	if err != nil {
		s.log(ctx).Error("failed to revoke tokens",
			"error", redact.Error(err),
			"user_id", userID)
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.log(ctx).Info("all tokens revoked", "user_id", userID, "count", n)
	return nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateUser checks every key of patch against the allow-list before reading
// the user, then validates the merged result as a whole. The password is
// rehashed only when it is part of the patch.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, userID uuid.UUID, patch Patch) (*domain.User, error) {
	log := s.log(ctx)

	if err := patch.checkAllowed(userPatchFields); err != nil {
		log.Debug("rejected user update", "error", err, "user_id", userID)
		return nil, err
	}

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if err := applyUserPatch(user, patch); err != nil {
			return err
		}

		if user.Password != "" {
			hashed, err := s.hasher.Hash(user.Password)
			if err != nil {
				return err
			}
			user.HashedPassword = hashed
			user.Password = ""
		}

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrEmailExists):
			log.Debug("rejected user update", "error", err, "user_id", userID)
		default:
			log.Error("failed to update user",
				"error", redact.Error(err),
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user updated", "user_id", userID)
	return updated, nil
}

func applyUserPatch(user *domain.User, patch Patch) error {
	var name, email, password string
	var age int

	if ok, err := patch.decode("name", &name); err != nil {
		return err
	} else if ok {
		user.Name = name
	}
	if ok, err := patch.decode("email", &email); err != nil {
		return err
	} else if ok {
		user.Email = email
	}
	if ok, err := patch.decode("age", &age); err != nil {
		return err
	} else if ok {
		user.Age = age
	}
	if ok, err := patch.decode("password", &password); err != nil {
		return err
	} else if ok {
		if err := domain.ValidatePassword(password); err != nil {
			return err
		}
		user.Password = password
	}

	user.Normalize()
	return user.Validate()
}

// DeleteUser deletes the user's tasks and the user in one transaction. The
// tokens go with the user row. Avatar cleanup and the goodbye email happen
// after commit and only log on failure.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := s.log(ctx)

	var deleted *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		n, err := s.tasks.WithTx(tx).DeleteByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if err := users.Delete(ctx, userID); err != nil {
			return err
		}
		log.Debug("deleted user tasks", "user_id", userID, "count", n)
		deleted = user
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete user",
				"error", redact.Error(err),
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.avatars.Delete(ctx, userID); err != nil {
		log.Warn("failed to remove avatar of deleted user",
			"error", redact.Error(err),
			"user_id", userID)
	}

	log.Info("user deleted", "user_id", userID)
	s.emit(ctx, events.UserDeleted, deleted)

	return deleted, nil
}

// SetAvatar normalizes the upload and stores it.
func (s *UserServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) error {
	log := s.log(ctx)

	img, err := s.processor.Process(filename, r)
	if err != nil {
		log.Debug("rejected avatar upload", "error", err, "user_id", userID)
		return err
	}

	if err := s.avatars.Put(ctx, userID, img); err != nil {
		log.Error("failed to store avatar",
			"error", redact.Error(err),
			"user_id", userID)
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.users.SetHasAvatar(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	log.Info("avatar updated", "user_id", userID, "bytes", len(img))
	return nil
}

// ClearAvatar implements UserService. Clearing a missing avatar succeeds.
func (s *UserServiceImpl) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.avatars.Delete(ctx, userID); err != nil {
		s.log(ctx).Error("failed to delete avatar",
			"error", redact.Error(err),
			"user_id", userID)
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	if err := s.users.SetHasAvatar(ctx, userID, false); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

// GetAvatar returns the stored PNG. Unknown users and users without an
// avatar both yield store.ErrAvatarNotFound.
func (s *UserServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	img, err := s.avatars.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to load avatar: %w", err)
	}
	return img, nil
}

// emit publishes an account event. Failures never reach the caller.
func (s *UserServiceImpl) emit(ctx context.Context, eventType string, user *domain.User) {
	log := s.log(ctx)

	event, err := events.NewAccountEvent(eventType, events.AccountPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		log.Error("failed to build account event", "error", err, "event_type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("account event handler failed",
			"error", redact.Error(err),
			"event_type", eventType,
			"user_id", user.ID)
	}
}
