// Package services contains server-side business logic: account
// registration and verification, login, refresh-token rotation and session
// management.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/common"
	"github.com/dmitrijs2005/investdesk/internal/cryptox"
	"github.com/dmitrijs2005/investdesk/internal/dbx"
	"github.com/dmitrijs2005/investdesk/internal/logging"
	"github.com/dmitrijs2005/investdesk/internal/server/auth"
	"github.com/dmitrijs2005/investdesk/internal/server/config"
	"github.com/dmitrijs2005/investdesk/internal/server/models"
	"github.com/dmitrijs2005/investdesk/internal/server/repositories/repomanager"
)

const refreshTokenBytes = 32

// Demo mode account and the verification code every user gets.
const (
	DemoEmail    = "demo@investdesk.dev"
	DemoPassword = "demo1234"
	DemoCode     = "123456"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CodeSender delivers verification codes to users.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogCodeSender writes codes to the log instead of mailing them.
type LogCodeSender struct {
	Logger logging.Logger
}

func (s LogCodeSender) SendVerificationCode(ctx context.Context, email, code string) error {
	s.Logger.Info(ctx, "verification code issued", "email", email, "code", code)
	return nil
}

type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	sender                       CodeSender
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	verificationCodeTTL          time.Duration
	newCode                      func() (string, error)
	now                          func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, sender CodeSender, logger logging.Logger, cfg *config.Config) *IdentityService {
	s := &IdentityService{
		db:                           db,
		repomanager:                  m,
		sender:                       sender,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		verificationCodeTTL:          cfg.VerificationCodeTTL,
		newCode:                      cryptox.NewVerificationCode,
		now:                          time.Now,
	}
	if cfg.DemoMode {
		s.newCode = func() (string, error) { return DemoCode, nil }
	}
	return s
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	return email, nil
}

// Register creates an unverified user and sends a verification code.
// A taken email yields common.ErrorAlreadyExists.
func (s *IdentityService) Register(ctx context.Context, email string, password []byte) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	user := &models.User{Email: email, Salt: salt, PasswordHash: cryptox.HashPassword(password, salt)}

	var code string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		code, err = s.issueCode(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return err
		}
		return fmt.Errorf("register: %w", err)
	}

	s.logger.Info(ctx, "user registered", "email", email)
	return s.sender.SendVerificationCode(ctx, email, code)
}

// SeedDemoUser creates the verified demo account unless it already exists.
func (s *IdentityService) SeedDemoUser(ctx context.Context) error {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	user := &models.User{Email: DemoEmail, Salt: salt, PasswordHash: cryptox.HashPassword([]byte(DemoPassword), salt)}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		return s.repomanager.Users(tx).MarkVerified(ctx, u.ID)
	})
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		s.logger.Info(ctx, "demo user already present", "email", DemoEmail)
		return nil
	case err != nil:
		return fmt.Errorf("seed demo user: %w", err)
	}

	s.logger.Info(ctx, "demo user created", "email", DemoEmail)
	return nil
}

func (s *IdentityService) issueCode(ctx context.Context, db dbx.DBTX, userID int64) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", err
	}
	vc := &models.VerificationCode{UserID: userID, Code: code, ExpiresAt: s.now().Add(s.verificationCodeTTL)}
	if err := s.repomanager.VerificationCodes(db).Upsert(ctx, vc); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyEmail marks the user verified if code is the current, unexpired one.
// Every mismatch yields common.ErrInvalidCode.
func (s *IdentityService) VerifyEmail(ctx context.Context, email, code string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return common.ErrInvalidCode
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCode
		}
		return fmt.Errorf("verify email: %w", err)
	}

	stored, err := s.repomanager.VerificationCodes(s.db).Find(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCode
		}
		return fmt.Errorf("verify email: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 || !s.now().Before(stored.ExpiresAt) {
		return common.ErrInvalidCode
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).MarkVerified(ctx, user.ID); err != nil {
			return err
		}
		return s.repomanager.VerificationCodes(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return nil
}

// ResendCode issues a fresh code to an existing unverified user. Unknown or
// already verified emails are silently ignored.
func (s *IdentityService) ResendCode(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("resend code: %w", err)
	}
	if user.Verified {
		return nil
	}

	code, err := s.issueCode(ctx, s.db, user.ID)
	if err != nil {
		return fmt.Errorf("resend code: %w", err)
	}
	return s.sender.SendVerificationCode(ctx, email, code)
}

// Login checks the credentials and opens a new session. Unknown email,
// wrong password and unverified account all yield common.ErrorUnauthorized.
func (s *IdentityService) Login(ctx context.Context, email string, password []byte, ip string) (*TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(password, user.Salt, user.PasswordHash) || !user.Verified {
		return nil, common.ErrorUnauthorized
	}

	refresh, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	session, err := s.repomanager.Sessions(s.db).Create(ctx, &models.Session{
		UserID:           user.ID,
		RefreshTokenHash: cryptox.HashToken(refresh),
		IP:               ip,
		ExpiresAt:        s.now().Add(s.refreshTokenValidityDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	access, err := s.generateAccessToken(auth.Identity{UserID: user.ID, SessionID: session.ID})
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID, "session_id", session.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh redeems a refresh token for a new pair. The presented token stops
// working. Unknown, already used or expired tokens yield
// common.ErrorUnauthorized or common.ErrRefreshTokenExpired.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	oldHash := cryptox.HashToken(refreshToken)

	session, err := s.repomanager.Sessions(s.db).FindByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, common.ErrRefreshTokenExpired
	}

	refresh, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Sessions(tx).Rotate(ctx, session.ID, oldHash,
			cryptox.HashToken(refresh), s.now().Add(s.refreshTokenValidityDuration))
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Lost a race with another redemption of the same token.
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	access, err := s.generateAccessToken(auth.Identity{UserID: session.UserID, SessionID: session.ID})
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Debug(ctx, "session refreshed", "user_id", session.UserID, "session_id", session.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate checks an access token and that its session still exists.
func (s *IdentityService) Authenticate(ctx context.Context, accessToken string) (auth.Identity, error) {
	id, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return auth.Identity{}, err
	}

	session, err := s.repomanager.Sessions(s.db).Get(ctx, id.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return auth.Identity{}, common.ErrorUnauthorized
		}
		return auth.Identity{}, fmt.Errorf("authenticate: %w", err)
	}
	if session.UserID != id.UserID {
		return auth.Identity{}, common.ErrorUnauthorized
	}
	return id, nil
}

// ListSessions returns the caller's sessions, newest first.
func (s *IdentityService) ListSessions(ctx context.Context, id auth.Identity) ([]models.Session, error) {
	sessions, err := s.repomanager.Sessions(s.db).ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession revokes one of the caller's other sessions. The current
// session yields common.ErrorForbidden, a foreign or unknown one
// common.ErrorNotFound.
func (s *IdentityService) DeleteSession(ctx context.Context, id auth.Identity, sessionID int64) error {
	if sessionID == id.SessionID {
		return common.ErrorForbidden
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID, id.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info(ctx, "session revoked", "user_id", id.UserID, "session_id", sessionID)
	return nil
}

func (s *IdentityService) generateAccessToken(id auth.Identity) (string, error) {
	return auth.GenerateToken(id, s.jwtSecret, s.accessTokenValidityDuration)
}
