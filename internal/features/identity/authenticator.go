package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xyz-asif/schoolsafe/internal/pkg/jwt"
	"github.com/xyz-asif/schoolsafe/internal/pkg/validator"
)

// Session is a principal plus the bearer token that proves it.
type Session struct {
	Principal *Principal `json:"principal"`
	Token     string     `json:"accessToken"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Role      string     `json:"role"`
}

// Authenticator issues portal sessions: anonymous ones for students and
// credential ones for staff accounts.
type Authenticator struct {
	staff  StaffRepository
	jwtCfg *jwt.Config
	logger *zap.Logger

	compareHash func(hash, password []byte) error
}

func NewAuthenticator(staff StaffRepository, jwtCfg *jwt.Config, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		staff:       staff,
		jwtCfg:      jwtCfg,
		logger:      logger,
		compareHash: bcrypt.CompareHashAndPassword,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// missHash is compared against when no account matches, so an unknown email
// costs the same bcrypt work as a wrong password.
func missHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("schoolsafe-no-such-account"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// Anonymous starts a session with a fresh uid and no email.
func (a *Authenticator) Anonymous(ctx context.Context) (*Session, error) {
	return a.issue(&Principal{UID: "anon_" + uuid.NewString()})
}

// Login checks email and password against the staff accounts. Every failure
// that depends on the credentials returns ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	if !validator.IsValidEmail(email) {
		return nil, ErrInvalidCredentials
	}

	staff, err := a.staff.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		_ = a.compareHash(missHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := a.compareHash([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return a.issue(&Principal{UID: staff.ID, Email: staff.Email})
}

// Verify implements Verifier for portal-issued tokens.
func (a *Authenticator) Verify(_ context.Context, token string) (*Principal, error) {
	claims, err := jwt.ValidateToken(token, a.jwtCfg)
	if err != nil {
		return nil, ErrInvalidSession
	}
	p := &Principal{UID: claims.UserID}
	if !claims.Anonymous {
		p.Email = claims.Email
	}
	return p, nil
}

// EnsureStaff creates a staff account when none exists for email.
func (a *Authenticator) EnsureStaff(ctx context.Context, email, password, displayName string) error {
	if !validator.IsValidEmail(email) || password == "" {
		return errors.New("staff account needs a valid email and a password")
	}

	existing, err := a.staff.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := &Staff{Email: email, PasswordHash: string(hash), DisplayName: displayName}
	if err := a.staff.Create(ctx, staff); err != nil && !errors.Is(err, ErrStaffExists) {
		return err
	}
	a.logger.Info("Staff account created", zap.String("email", staff.Email))
	return nil
}

func (a *Authenticator) issue(p *Principal) (*Session, error) {
	token, expires, err := jwt.GenerateToken(p.UID, p.Email, a.jwtCfg)
	if err != nil {
		return nil, err
	}
	return &Session{
		Principal: p,
		Token:     token,
		ExpiresAt: expires,
		Role:      ResolveRole(p).String(),
	}, nil
}
