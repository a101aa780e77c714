package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"policymatcher/internal/errs"
	"policymatcher/internal/models"
	"policymatcher/internal/security"
)

const msgEmailTaken = "이미 사용 중인 이메일입니다."

type UserStore interface {
	Create(ctx context.Context, user models.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}

type NicknameSource interface {
	Next() string
}

// RegisterInput arrives already shape-checked by the form binding.
type RegisterInput struct {
	Email    string
	Password string
}

type AuthService struct {
	users      UserStore
	nicknames  NicknameSource
	adminEmail string
	log        zerolog.Logger

	hash func(password string) ([]byte, error)
}

func NewAuthService(users UserStore, nicknames NicknameSource, adminEmail string, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		nicknames:  nicknames,
		adminEmail: strings.TrimSpace(adminEmail),
		log:        log,
		hash:       security.HashPassword,
	}
}

// Register creates a member account. The configured admin email is promoted
// to admin on creation.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.Principal, error) {
	email := strings.TrimSpace(input.Email)

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return models.Principal{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Nickname:     s.nicknames.Next(),
		IsAdmin:      s.isAdminEmail(email),
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			verr := errs.NewValidationError()
			verr.Add("email", msgEmailTaken)
			return models.Principal{}, verr
		}
		return models.Principal{}, err
	}

	s.log.Info().Int64("user_id", id).Bool("is_admin", user.IsAdmin).Msg("user registered")
	return models.Principal{UserID: id, Email: user.Email, Nickname: user.Nickname, IsAdmin: user.IsAdmin}, nil
}

// Login never says which half of the credentials was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Principal, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.Principal{}, errs.ErrInvalidCredentials
		}
		return models.Principal{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash unreadable")
		return models.Principal{}, errs.ErrInvalidCredentials
	}
	if !ok {
		return models.Principal{}, errs.ErrInvalidCredentials
	}

	return models.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
		IsAdmin:  user.IsAdmin,
	}, nil
}

// BootstrapAdmin promotes the configured admin email if that account exists.
func (s *AuthService) BootstrapAdmin(ctx context.Context) (models.User, error) {
	if s.adminEmail == "" {
		return models.User{}, errors.New("no admin email configured")
	}
	user, err := s.users.FindByEmail(ctx, s.adminEmail)
	if err != nil {
		return models.User{}, err
	}
	if user.IsAdmin {
		return user, nil
	}
	if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
		return models.User{}, err
	}
	user.IsAdmin = true
	s.log.Info().Int64("user_id", user.ID).Msg("admin bootstrapped")
	return user, nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	return s.adminEmail != "" && email == s.adminEmail
}
