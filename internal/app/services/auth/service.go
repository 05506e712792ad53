package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"staynest/internal/app/policies"
	domainauth "staynest/internal/domain/auth"
	domainuser "staynest/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrGuestAccount       = errors.New("auth: account requires verification before login")
	ErrNotGuestAccount    = errors.New("auth: account is already verified")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

type OTPGenerator interface {
	NewCode() (string, error)
}

type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	OTPs       domainuser.OTPStore
	OTPCodes   OTPGenerator
	Notifier   policies.Notifier
	SessionTTL time.Duration
	OTPTTL     time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email      string
	Name       string
	Password   string
	WantToHost bool
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	name := strings.TrimSpace(params.Name)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if name == "" {
		return nil, domainuser.ErrNameRequired
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	if existing, err := s.Users.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	roles := []domainuser.Role{domainuser.RoleGuest}
	if params.WantToHost {
		roles = append(roles, domainuser.RoleHost)
	}
	user, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "email", user.Email, "roles", user.Roles)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Guest {
		return nil, ErrGuestAccount
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, domainauth.Token(token)); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated")
	}
	return nil
}

func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.Token)
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// RequestOTP emails a one-time code to a walk-in guest account so it can be
// converted into a full account. The code overwrites any earlier unconsumed
// challenge for the same email.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	if err := s.ensureOTPDependencies(); err != nil {
		return err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domainuser.ErrEmailRequired
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.Guest {
		return ErrNotGuestAccount
	}
	code, err := s.OTPCodes.NewCode()
	if err != nil {
		return err
	}
	challenge := domainuser.NewOTPChallenge(email, code, s.otpTTL(), time.Now())
	if err := s.OTPs.Save(ctx, challenge); err != nil {
		return err
	}
	if s.Notifier != nil {
		if err := s.Notifier.Send(ctx, email, "otp_code", map[string]string{"code": code}); err != nil && s.Logger != nil {
			s.Logger.Warn("otp notification failed", "email", email, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("otp challenge issued", "email", email)
	}
	return nil
}

// VerifyOTP consumes the challenge, sets the chosen password, and logs the
// converted account in.
func (s *Service) VerifyOTP(ctx context.Context, email, code, password string) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if err := s.ensureOTPDependencies(); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}
	challenge, err := s.OTPs.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := challenge.Verify(code, now); err != nil {
		// Persist the attempt counter so retries cannot reset it.
		_ = s.OTPs.Save(ctx, challenge)
		return nil, err
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Guest {
		return nil, ErrNotGuestAccount
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	if err := user.ConvertGuest(hash, now); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.OTPs.Delete(ctx, email); err != nil && s.Logger != nil {
		s.Logger.Warn("otp challenge cleanup failed", "email", email, "error", err)
	}
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("guest account converted", "user_id", user.ID)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (string, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: user.ID,
		Roles:  append([]domainuser.Role(nil), user.Roles...),
		TTL:    s.sessionTTL(),
		Now:    time.Now(),
	})
	if err != nil {
		return "", err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) otpTTL() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return 10 * time.Minute
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}

func (s *Service) ensureOTPDependencies() error {
	switch {
	case s.OTPs == nil:
		return errors.New("auth: otp store required")
	case s.OTPCodes == nil:
		return errors.New("auth: otp generator required")
	default:
		return nil
	}
}
