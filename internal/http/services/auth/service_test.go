package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tandem/internal/chat"
	"github.com/dropDatabas3/tandem/internal/domain/repository"
	jwtx "github.com/dropDatabas3/tandem/internal/jwt"
	"github.com/dropDatabas3/tandem/internal/security/otp"
	"github.com/dropDatabas3/tandem/internal/security/password"
	"github.com/dropDatabas3/tandem/internal/store/memory"
)

// ─── fakes ───

type mail struct {
	kind, to, name, code string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []mail
	otpErr  error
	succErr error
	// beforeOTP corre antes de responder SendOTP, fuera del lock
	beforeOTP func()
}

func (f *fakeNotifier) SendOTP(_ context.Context, to, name, code string) error {
	if f.beforeOTP != nil {
		f.beforeOTP()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.otpErr != nil {
		return f.otpErr
	}
	f.sent = append(f.sent, mail{"otp", to, name, code})
	return nil
}

func (f *fakeNotifier) SendResetSuccess(_ context.Context, to, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.succErr != nil {
		return f.succErr
	}
	f.sent = append(f.sent, mail{"reset_success", to, name, ""})
	return nil
}

func (f *fakeNotifier) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == "otp" {
			return f.sent[i].code
		}
	}
	return ""
}

type fakeChat struct {
	mu       sync.Mutex
	upserted []chat.Profile
	err      error
}

func (f *fakeChat) UpsertProfile(_ context.Context, p chat.Profile) chat.SyncResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return chat.SyncResult{Err: f.err}
	}
	f.upserted = append(f.upserted, p)
	return chat.SyncResult{Synced: true}
}

func (f *fakeChat) CreateToken(userID string) (string, error) { return "chat-" + userID, nil }

// seqOTP devuelve los códigos en orden.
type seqOTP struct {
	mu    sync.Mutex
	codes []string
}

func (s *seqOTP) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.codes[0]
	if len(s.codes) > 1 {
		s.codes = s.codes[1:]
	}
	return c, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc      *Service
	users    *memory.UserStore
	notifier *fakeNotifier
	chat     *fakeChat
	clock    *clock
	tokens   *jwtx.Issuer
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()
	if len(codes) == 0 {
		codes = []string{"123456"}
	}
	clk := &clock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	iss, err := jwtx.NewIssuer("test-secret", "tandem", 0)
	require.NoError(t, err)
	iss.Now = clk.Now

	f := &fixture{
		users:    memory.NewUserStore(),
		notifier: &fakeNotifier{},
		chat:     &fakeChat{},
		clock:    clk,
		tokens:   iss,
	}
	f.svc = NewService(Deps{
		Users:       f.users,
		Hasher:      password.Bcrypt{Cost: 4},
		Tokens:      iss,
		Notifier:    f.notifier,
		Chat:        f.chat,
		OTP:         &seqOTP{codes: codes},
		Now:         clk.Now,
		AvatarIndex: func() int { return 42 },
	})
	return f
}

func (f *fixture) signup(t *testing.T, email, pw, name string) *SessionResult {
	t.Helper()
	res, err := f.svc.Signup(context.Background(), SignupInput{Email: email, Password: pw, FullName: name})
	require.NoError(t, err)
	return res
}

// ─── Signup / Login ───

func TestSignup_Success(t *testing.T) {
	f := newFixture(t)
	res := f.signup(t, "a@x.com", "secret1", "Ann")

	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "Ann", res.User.FullName)
	assert.Equal(t, "https://avatar.iran.liara.run/public/42.png", res.User.ProfilePic)
	assert.False(t, res.User.IsOnboarded)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.True(t, password.Bcrypt{}.Verify("secret1", res.User.PasswordHash))

	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), res.ExpiresAt)
	uid, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)

	require.Len(t, f.chat.upserted, 1)
	assert.Equal(t, chat.Profile{ID: res.User.ID, Name: "Ann", Image: res.User.ProfilePic}, f.chat.upserted[0])
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupInput{Email: "a@x.com"})
	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{"password", "fullName"}, mf.Fields)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = f.svc.Signup(ctx, SignupInput{Email: "a@x.com", Password: "12345", FullName: "A"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	for _, bad := range []string{"ax.com", "a@x", "a b@x.com", "@x.com"} {
		_, err = f.svc.Signup(ctx, SignupInput{Email: bad, Password: "123456", FullName: "A"})
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com", "secret1", "Ann")

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "secret2", FullName: "Bob"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	u, err := f.users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.FullName)
}

func TestSignup_ChatFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.chat.err = errors.New("stream down")
	res := f.signup(t, "a@x.com", "secret1", "Ann")
	assert.NotEmpty(t, res.Token)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginInput{Email: " a@x.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, errUnknown := f.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	_, errWrong := f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong-pw"})
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

// ─── OTP flow ───

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.ForgotPassword(context.Background(), "unknown@x.com")
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Empty(t, f.notifier.sent)
}

func TestForgotPassword_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ForgotPassword(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = f.svc.ForgotPassword(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestForgotPassword_VerifyWithinAndAfterWindow(t *testing.T) {
	f := newFixture(t, "123456")
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	res, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, res.Sent)
	assert.Equal(t, "123456", f.notifier.lastCode())

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, u.HasPendingOTP())
	assert.NotEqual(t, "123456", *u.ResetPasswordOTP)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), *u.ResetPasswordOTPExpires)

	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))
	// no consume
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "654321"), ErrInvalidOTP)

	f.clock.Advance(10 * time.Minute)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrInvalidOTP)
}

func TestVerifyOTP_GenericFailures(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "nobody@x.com", "123456"), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", ""), ErrMissingFields)
}

func TestForgotPassword_DeliveryFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "a@x.com", "secret1", "Ann")
	f.notifier.otpErr = errors.New("smtp down")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrDelivery)

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, u.ResetPasswordOTP)
	assert.Nil(t, u.ResetPasswordOTPExpires)

	_, err = f.svc.ResendOTP(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestForgotPassword_RollbackKeepsNewerOTP(t *testing.T) {
	f := newFixture(t, "111111")
	created := f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	// otro request emite un código nuevo mientras el envío del primero falla
	f.notifier.otpErr = errors.New("smtp down")
	f.notifier.beforeOTP = func() {
		require.NoError(t, f.users.SetResetOTP(ctx, created.User.ID, otp.Hash("999999"), f.clock.Now().Add(10*time.Minute)))
	}

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrDelivery)

	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "999999"))
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "111111"), ErrInvalidOTP)
}

func TestResendOTP_InvalidatesPrevious(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	res, err := f.svc.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, res.Sent)

	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "111111"), ErrInvalidOTP)
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "222222"))

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), *u.ResetPasswordOTPExpires)

	res, err = f.svc.ResendOTP(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, res.Sent)
}

func TestSignup_PasswordByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupInput{Email: "long@x.com", Password: strings.Repeat("a", 80), FullName: "Ann"})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	res, err := f.svc.Signup(ctx, SignupInput{Email: "max@x.com", Password: strings.Repeat("a", password.MaxBytes), FullName: "Ann"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, LoginInput{Email: "max@x.com", Password: strings.Repeat("a", password.MaxBytes)})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestResetPassword_PasswordByteLimit(t *testing.T) {
	f := newFixture(t, "123456")
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456", NewPassword: strings.Repeat("ñ", 40)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// el OTP sigue vigente
	assert.NoError(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"))
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, "123456")
	created := f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "000000", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456"})
	assert.ErrorIs(t, err, ErrMissingFields)

	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456", NewPassword: "newsecret"}))

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, created.User.PasswordHash, u.PasswordHash)
	assert.False(t, u.HasPendingOTP())
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@x.com", "123456"), ErrInvalidOTP)

	_, err = f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "newsecret"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "reset_success", last.kind)
}

func TestResetPassword_SuccessEmailFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, "123456")
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()
	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)

	f.notifier.succErr = errors.New("smtp down")
	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456", NewPassword: "newsecret"}))
}

func TestResetPassword_ExpiredOTP(t *testing.T) {
	f := newFixture(t, "123456")
	f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()
	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", OTP: "123456", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

// ─── Onboarding / Me / Chat ───

func TestOnboard(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	_, err := f.svc.Onboard(ctx, created.User.ID, OnboardInput{FullName: "Ann", Location: "Lima"})
	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{"nativeLanguage", "learningLanguage", "bio"}, mf.Fields)

	in := OnboardInput{FullName: "Ann B", Bio: "hi", NativeLanguage: "spanish", LearningLanguage: "english", Location: "Lima"}
	u, err := f.svc.Onboard(ctx, created.User.ID, in)
	require.NoError(t, err)
	assert.True(t, u.IsOnboarded)
	assert.Equal(t, "Ann B", u.FullName)
	assert.Equal(t, "english", u.LearningLanguage)
	// signup + onboard
	assert.Len(t, f.chat.upserted, 2)

	_, err = f.svc.Onboard(ctx, "does-not-exist", in)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMeAndChatToken(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "a@x.com", "secret1", "Ann")
	ctx := context.Background()

	u, err := f.svc.Me(ctx, created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = f.svc.Me(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)

	tok, err := f.svc.ChatToken(ctx, created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "chat-"+created.User.ID, tok)
}

func TestChatToken_Unavailable(t *testing.T) {
	users := memory.NewUserStore()
	u, err := users.Create(context.Background(), repository.CreateUserInput{Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	svc := NewService(Deps{Users: users, Hasher: password.Bcrypt{Cost: 4}, Notifier: &fakeNotifier{}, OTP: &seqOTP{codes: []string{"000000"}}})
	_, err = svc.ChatToken(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrChatUnavailable)
}

func TestAvatarURL_Range(t *testing.T) {
	for _, n := range []int{0, 1, 100, 101, -5} {
		svc := NewService(Deps{AvatarIndex: func() int { return n }})
		assert.Regexp(t, `^https://avatar\.iran\.liara\.run/public/([1-9]|[1-9][0-9]|100)\.png$`, svc.avatarURL(), n)
	}
	svc := NewService(Deps{})
	for i := 0; i < 200; i++ {
		assert.Regexp(t, `/public/([1-9]|[1-9][0-9]|100)\.png$`, svc.avatarURL())
	}
}
