package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kicks/internal/domain"
	applog "kicks/internal/log"
	"kicks/internal/mailer"
	"kicks/internal/otp"
	"kicks/internal/repos"
	"kicks/internal/validate"
)

type AuthService struct {
	Users  *repos.UserRepo
	Admins *repos.AdminRepo
	OTPs   *repos.OTPRepo
	Tokens *TokenIssuer
	Mail   *mailer.Notifier

	// AdminCodes gates back-office registration per role; an empty code
	// disables registration for that role.
	AdminCodes map[domain.AdminRole]string

	NewCode func() (string, error)
	Now     func() time.Time
}

func NewAuthService(users *repos.UserRepo, admins *repos.AdminRepo, otps *repos.OTPRepo, tokens *TokenIssuer, mail *mailer.Notifier) *AuthService {
	return &AuthService{
		Users:      users,
		Admins:     admins,
		OTPs:       otps,
		Tokens:     tokens,
		Mail:       mail,
		AdminCodes: map[domain.AdminRole]string{},
		NewCode:    otp.Generate,
		Now:        time.Now,
	}
}

func hashPassword(p string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(h), err
}

func checkSignup(name, email, password string) (string, string, error) {
	name, ok := validate.Name(name)
	if !ok {
		return "", "", invalid("name is required")
	}
	email, ok = validate.Email(email)
	if !ok {
		return "", "", invalid("a valid email is required")
	}
	if !validate.Password(password) {
		return "", "", invalid("password must be at least 6 characters")
	}
	return name, email, nil
}

// Register creates an unverified account and e-mails a registration code.
// Registering again with an unverified e-mail only re-sends a code, subject
// to the resend cooldown; the stored name and password stay as they were
// until the owner proves the address (verify, or a password reset).
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name, email, err := checkSignup(name, email, password)
	if err != nil {
		return nil, err
	}

	u, err := s.Users.ByEmail(email)
	switch {
	case err == nil && u.IsVerified:
		return nil, ErrEmailTaken
	case err == nil:
		if err := s.issueOTP(ctx, u.Name, u.Email, otp.PurposeRegistration); err != nil {
			return nil, err
		}
		return u, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u = &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Hash:      hash,
		CreatedAt: s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := s.issueOTP(ctx, u.Name, u.Email, otp.PurposeRegistration); err != nil {
		return nil, err
	}
	return u, nil
}

// issueOTP stores a fresh code, replacing the previous one, unless the last
// code for this e-mail and purpose is younger than the resend cooldown.
func (s *AuthService) issueOTP(ctx context.Context, name, email string, purpose otp.Purpose) error {
	now := s.Now()
	if prev, err := s.OTPs.Get(email, string(purpose)); err == nil {
		if now.Sub(prev.IssuedAt()) < otp.ResendCooldown {
			return ErrOTPCooldown
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	code, err := s.NewCode()
	if err != nil {
		return err
	}
	hash, err := otp.Hash(code)
	if err != nil {
		return err
	}
	if err := s.OTPs.Put(email, string(purpose), hash, now, otp.TTL); err != nil {
		return err
	}
	if s.Mail != nil {
		if err := s.Mail.SendOTP(ctx, name, email, code, purpose); err != nil {
			// The code is stored; the shopper can ask for a resend.
			applog.Error(nil, "mail.otp.fail", err, map[string]any{"email": email, "purpose": string(purpose)})
		}
	}
	return nil
}

// consumeOTP checks a submitted code and deletes it on success. The code
// must be exactly six digits as sent; clients clean up input before posting.
func (s *AuthService) consumeOTP(email, code string, purpose otp.Purpose) error {
	if !otp.Complete(code) {
		return ErrInvalidOTP
	}
	row, err := s.OTPs.Get(email, string(purpose))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if row.Expired(s.Now()) || !otp.Matches(row.CodeHash, code) {
		return ErrInvalidOTP
	}
	return s.OTPs.Delete(email, string(purpose))
}

// VerifyOTP confirms a registration code and signs the shopper in.
func (s *AuthService) VerifyOTP(email, code string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrInvalidOTP
	}
	if err != nil {
		return "", nil, err
	}
	if err := s.consumeOTP(email, code, otp.PurposeRegistration); err != nil {
		return "", nil, err
	}
	if err := s.Users.MarkVerified(u.ID); err != nil {
		return "", nil, err
	}
	return s.userSession(u.ID)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if u.IsVerified {
		return invalid("email is already verified")
	}
	return s.issueOTP(ctx, u.Name, u.Email, otp.PurposeRegistration)
}

func (s *AuthService) Login(email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(strings.TrimSpace(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return "", nil, ErrNotVerified
	}
	return s.userSession(u.ID)
}

func (s *AuthService) userSession(id string) (string, *domain.User, error) {
	u, err := s.Users.ByID(id)
	if err != nil {
		return "", nil, err
	}
	tok, err := s.Tokens.Issue(u.ID, RoleUser)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// ForgotPassword e-mails a reset code when the account exists. It reports
// success either way so callers cannot probe for registered e-mails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.ByEmail(strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.issueOTP(ctx, u.Name, u.Email, otp.PurposePasswordReset); err != nil && !errors.Is(err, ErrOTPCooldown) {
		return err
	}
	return nil
}

// ResetPassword sets a new password after checking the reset code. A
// successful reset also proves ownership of the e-mail.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	if !validate.Password(newPassword) {
		return invalid("password must be at least 6 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if err := s.consumeOTP(email, code, otp.PurposePasswordReset); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.SetPassword(u.ID, hash); err != nil {
		return err
	}
	if !u.IsVerified {
		return s.Users.MarkVerified(u.ID)
	}
	return nil
}

func (s *AuthService) CurrentUser(id string) (*domain.User, error) {
	u, err := s.Users.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// AdminRegister creates a back-office account when code matches the
// configured verification code for role.
func (s *AuthService) AdminRegister(name, email, password string, role domain.AdminRole, code string) (string, *domain.Admin, error) {
	name, email, err := checkSignup(name, email, password)
	if err != nil {
		return "", nil, err
	}
	if !role.Valid() {
		return "", nil, invalid("role must be Admin or Owner")
	}
	want := s.AdminCodes[role]
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(strings.TrimSpace(code))) != 1 {
		return "", nil, ErrBadVerification
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", nil, err
	}
	a := &domain.Admin{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Hash:      hash,
		Role:      role,
		CreatedAt: s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Admins.Create(a); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, err
	}
	tok, err := s.Tokens.Issue(a.ID, RoleAdmin)
	if err != nil {
		return "", nil, err
	}
	return tok, a, nil
}

func (s *AuthService) AdminLogin(email, password string) (string, *domain.Admin, error) {
	a, err := s.Admins.ByEmail(strings.TrimSpace(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := s.Tokens.Issue(a.ID, RoleAdmin)
	if err != nil {
		return "", nil, err
	}
	return tok, a, nil
}

func (s *AuthService) CurrentAdmin(id string) (*domain.Admin, error) {
	a, err := s.Admins.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}
