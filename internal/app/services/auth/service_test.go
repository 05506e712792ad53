package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staynest/internal/domain/auth"
	domainuser "staynest/internal/domain/user"
	"staynest/internal/infra/storage/memory"
)

// plainHasher avoids bcrypt cost in tests while keeping Compare semantics.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

type fixedCode struct{ code string }

func (g fixedCode) NewCode() (string, error) { return g.code, nil }

type capturingNotifier struct {
	to       string
	template string
	data     any
}

func (n *capturingNotifier) Send(ctx context.Context, to string, template string, data any) error {
	n.to = to
	n.template = template
	n.data = data
	return nil
}

func newService(t *testing.T) (*Service, *capturingNotifier) {
	t.Helper()
	notifier := &capturingNotifier{}
	svc := &Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: plainHasher{},
		Tokens:    &seqTokens{},
		OTPs:      memory.NewOTPStore(),
		OTPCodes:  fixedCode{code: "482916"},
		Notifier:  notifier,
	}
	return svc, notifier
}

func seedGuestAccount(t *testing.T, svc *Service, email string) *domainuser.User {
	t.Helper()
	user, err := domainuser.New(domainuser.CreateParams{
		ID:        "guest-user-1",
		Email:     email,
		Name:      "Walk-in Guest",
		Roles:     []domainuser.Role{domainuser.RoleGuest},
		Guest:     true,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Users.Save(context.Background(), user))
	return user
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	res, err := svc.Register(ctx, RegisterParams{
		Email:    "Asha@Example.com",
		Name:     "Asha",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, []domainuser.Role{domainuser.RoleGuest}, res.User.Roles)
	assert.NotEmpty(t, res.Token)

	resolved, err := svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)

	login, err := svc.Login(ctx, LoginParams{Email: "asha@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotEqual(t, res.Token, login.Token)

	require.NoError(t, svc.Logout(ctx, login.Token))
	_, err = svc.ResolveToken(ctx, login.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Register(ctx, RegisterParams{Email: "", Name: "x", Password: "longenough"})
	require.ErrorIs(t, err, domainuser.ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "x", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "x", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterParams{Email: "A@B.com", Name: "y", Password: "longenough"})
	require.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterWithHostRole(t *testing.T) {
	svc, _ := newService(t)
	res, err := svc.Register(context.Background(), RegisterParams{
		Email:      "host@example.com",
		Name:       "Host",
		Password:   "longenough",
		WantToHost: true,
	})
	require.NoError(t, err)
	assert.True(t, res.User.HasRole(domainuser.RoleHost))
	assert.True(t, res.User.HasRole(domainuser.RoleGuest))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "whatever1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "x", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "wrong pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	seedGuestAccount(t, svc, "walkin@example.com")
	_, err = svc.Login(ctx, LoginParams{Email: "walkin@example.com", Password: "longenough"})
	require.ErrorIs(t, err, ErrGuestAccount)
}

func TestGuestConversionFlow(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newService(t)
	seedGuestAccount(t, svc, "walkin@example.com")

	require.NoError(t, svc.RequestOTP(ctx, "Walkin@Example.com"))
	assert.Equal(t, "walkin@example.com", notifier.to)
	assert.Equal(t, "otp_code", notifier.template)
	assert.Equal(t, map[string]string{"code": "482916"}, notifier.data)

	res, err := svc.VerifyOTP(ctx, "walkin@example.com", "482916", "chosen password")
	require.NoError(t, err)
	assert.False(t, res.User.Guest)
	assert.NotEmpty(t, res.Token)

	login, err := svc.Login(ctx, LoginParams{Email: "walkin@example.com", Password: "chosen password"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	// The challenge is single use.
	_, err = svc.VerifyOTP(ctx, "walkin@example.com", "482916", "chosen password")
	require.ErrorIs(t, err, domainuser.ErrOTPNotFound)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedGuestAccount(t, svc, "walkin@example.com")
	require.NoError(t, svc.RequestOTP(ctx, "walkin@example.com"))

	_, err := svc.VerifyOTP(ctx, "walkin@example.com", "000000", "chosen password")
	require.ErrorIs(t, err, domainuser.ErrOTPMismatch)

	// The right code still works while attempts remain.
	res, err := svc.VerifyOTP(ctx, "walkin@example.com", "482916", "chosen password")
	require.NoError(t, err)
	assert.False(t, res.User.Guest)
}

func TestVerifyOTPAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedGuestAccount(t, svc, "walkin@example.com")
	require.NoError(t, svc.RequestOTP(ctx, "walkin@example.com"))

	for i := 0; i < 5; i++ {
		_, err := svc.VerifyOTP(ctx, "walkin@example.com", "000000", "chosen password")
		require.ErrorIs(t, err, domainuser.ErrOTPMismatch)
	}
	_, err := svc.VerifyOTP(ctx, "walkin@example.com", "482916", "chosen password")
	require.ErrorIs(t, err, domainuser.ErrOTPConsumed)
}

func TestRequestOTPForVerifiedAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "x", Password: "longenough"})
	require.NoError(t, err)

	err = svc.RequestOTP(ctx, "a@b.com")
	require.ErrorIs(t, err, ErrNotGuestAccount)
}

func TestVerifyOTPExpired(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	seedGuestAccount(t, svc, "walkin@example.com")
	stale := domainuser.NewOTPChallenge("walkin@example.com", "482916", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, svc.OTPs.Save(ctx, stale))

	_, err := svc.VerifyOTP(ctx, "walkin@example.com", "482916", "chosen password")
	require.ErrorIs(t, err, domainuser.ErrOTPExpired)
}
