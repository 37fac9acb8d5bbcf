package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Baaaki/yamdb/internal/mail"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/internal/utils"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// AuthService runs the signup → confirmation code → token flow.
type AuthService struct {
	userRepo  *repository.UserRepository
	mailer    mail.Mailer
	jwtSecret string
	jwtExpiry time.Duration
	codeTTL   time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, mailer mail.Mailer, jwtSecret string, jwtExpiry, codeTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		codeTTL:   codeTTL,
	}
}

// Signup registers (username, email) or re-issues a code for an existing
// identical pair, then mails the new confirmation code.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	byUsername, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to check username existence", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if byUsername != nil && byUsername.Email != email {
		logger.Log.Warn("Signup rejected: username taken", zap.String("username", username))
		return nil, conflictError("username %q is already taken", username)
	}

	byEmail, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to check email existence", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if byEmail != nil && byEmail.Username != username {
		logger.Log.Warn("Signup rejected: email registered", zap.String("email", email))
		return nil, conflictError("email %q is already registered", email)
	}

	code, err := utils.GenerateConfirmationCode()
	if err != nil {
		logger.Log.Error("Failed to generate confirmation code", zap.Error(err))
		return nil, err
	}
	codeHash, err := utils.HashSecret(code)
	if err != nil {
		logger.Log.Error("Failed to hash confirmation code", zap.Error(err))
		return nil, err
	}
	expiresAt := time.Now().Add(s.codeTTL)

	user := byUsername
	if user == nil {
		user = &models.User{
			Username:                  username,
			Email:                     email,
			Role:                      models.RoleUser,
			ConfirmationCodeHash:      codeHash,
			ConfirmationCodeExpiresAt: &expiresAt,
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			if isDuplicateKey(err) {
				logger.Log.Warn("Signup lost a race on unique username/email", zap.String("username", username))
				return nil, conflictError("username or email is already registered")
			}
			logger.Log.Error("Failed to create user", zap.String("username", username), zap.Error(err))
			return nil, err
		}
	} else {
		if err := s.userRepo.SetConfirmationCode(ctx, user.ID, codeHash, expiresAt); err != nil {
			logger.Log.Error("Failed to store confirmation code", zap.String("user_id", user.ID.String()), zap.Error(err))
			return nil, err
		}
		user.ConfirmationCodeHash = codeHash
		user.ConfirmationCodeExpiresAt = &expiresAt
	}

	body := fmt.Sprintf("Your confirmation code: %s\n\nIt expires at %s.", code, expiresAt.UTC().Format(time.RFC1123))
	if err := s.mailer.Send(ctx, email, username, body); err != nil {
		logger.Log.Error("Failed to send confirmation code",
			zap.String("user_id", user.ID.String()),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Confirmation code issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
		zap.Bool("new_user", byUsername == nil),
		zap.Duration("total_duration", time.Since(start)),
	)
	return user, nil
}

// IssueToken exchanges a confirmation code for an access token. Every failure
// reads the same so callers cannot probe which usernames exist.
func (s *AuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	invalid := newError(ErrInvalidConfirmationCode, "invalid confirmation code")

	if username == "" || code == "" {
		return "", invalid
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to get user by username", zap.String("username", username), zap.Error(err))
		return "", err
	}
	if user == nil {
		logger.Log.Warn("Token rejected: unknown username", zap.String("username", username))
		return "", invalid
	}

	now := time.Now()
	if user.ConfirmationCodeHash == "" || user.ConfirmationCodeExpiresAt == nil || now.After(*user.ConfirmationCodeExpiresAt) {
		logger.Log.Warn("Token rejected: no live confirmation code", zap.String("user_id", user.ID.String()))
		return "", invalid
	}

	valid, err := utils.VerifySecret(code, user.ConfirmationCodeHash)
	if err != nil {
		logger.Log.Error("Stored confirmation code hash is unreadable", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", invalid
	}
	if !valid {
		logger.Log.Warn("Token rejected: code mismatch", zap.String("user_id", user.ID.String()))
		return "", invalid
	}

	consumed, err := s.userRepo.ConsumeConfirmationCode(ctx, user, now)
	if err != nil {
		logger.Log.Error("Failed to consume confirmation code", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", err
	}
	if !consumed {
		logger.Log.Warn("Token rejected: code already used", zap.String("user_id", user.ID.String()))
		return "", invalid
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", err
	}

	logger.Log.Info("Access token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return token, nil
}

// Authenticate resolves a bearer token to the current user row, so role
// changes and deletions apply to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, newError(ErrUnauthenticated, "token has expired")
		}
		return nil, newError(ErrUnauthenticated, "invalid token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		logger.Log.Error("Failed to load token user", zap.String("user_id", claims.UserID.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrUnauthenticated, "user not found")
	}
	return user, nil
}
