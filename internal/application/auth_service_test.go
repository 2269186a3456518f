package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	"github.com/oksasatya/masjid-api/pkg/apperror"
	"github.com/oksasatya/masjid-api/pkg/helpers"
)

type authFixture struct {
	svc      *AuthService
	users    *memUserRepo
	sessions *memSessions
	notifier *fakeNotifier
	index    *fakeIndex
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newMemUserRepo(),
		sessions: newMemSessions(),
		notifier: &fakeNotifier{},
		index:    &fakeIndex{},
	}
	f.svc = NewAuthService(f.users, f.sessions, f.notifier, f.index, 5*time.Minute, helpers.NewDiscardLogger())
	return f
}

func (f *authFixture) signup(t *testing.T, name, email, phone, password string) *entity.Session {
	t.Helper()
	sess, err := f.svc.Signup(context.Background(), SignupInput{FullName: name, Email: email, Phone: phone, Password: password})
	require.NoError(t, err)
	return sess
}

func TestSignupStartsSessionAndHashesPassword(t *testing.T) {
	f := newAuthFixture(t)
	sess := f.signup(t, "Aisha Khan", " Aisha@Example.org ", "5550001", "password123")

	assert.Equal(t, "aisha@example.org", sess.Email)
	assert.Equal(t, "Aisha Khan", sess.FullName)
	assert.Equal(t, 1, f.sessions.count())

	u := f.users.byEmail("aisha@example.org")
	require.NotNil(t, u)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "password123"))
	assert.False(t, helpers.CompareHashAndPassword(u.PasswordHash, "password124"))
	assert.NotEmpty(t, u.UniqueID)
	assert.Equal(t, entity.RoleUser, u.Role)

	assert.Equal(t, u.UniqueID, sess.UserID)
	assert.NotEqual(t, u.ID, u.UniqueID)
	assert.Contains(t, f.index.docs, u.UniqueID)
	assert.IsType(t, entity.PublicUser{}, f.index.docs[u.UniqueID])
}

func TestSignupDuplicateIdentityIsConflict(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")

	cases := map[string]SignupInput{
		"same email":            {FullName: "Other", Email: "aisha@example.org", Phone: "5550002", Password: "password123"},
		"same email other case": {FullName: "Other", Email: "AISHA@example.org", Phone: "5550003", Password: "password123"},
		"same phone":            {FullName: "Other", Email: "other@example.org", Phone: "5550001", Password: "password123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Signup(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindConflict))
			assert.ErrorIs(t, err, ErrDuplicateIdentity)
			assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		})
	}
	users, _ := f.users.List(context.Background())
	assert.Len(t, users, 1)
	assert.Equal(t, 1, f.sessions.count())
}

func TestLoginSessionHoldsPublicFields(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")

	sess, err := f.svc.Login(context.Background(), "AISHA@example.org", "password123")
	require.NoError(t, err)

	u := f.users.byEmail("aisha@example.org")
	assert.Equal(t, u.UniqueID, sess.UserID)
	assert.Equal(t, u.FullName, sess.FullName)
	assert.Equal(t, u.Email, sess.Email)
	assert.Equal(t, u.Phone, sess.Phone)

	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 4)
	assert.Equal(t, map[string]any{
		"id":        u.UniqueID,
		"full_name": "Aisha",
		"email":     "aisha@example.org",
		"phone":     "5550001",
	}, fields)
}

func TestMeReturnsPublicProjection(t *testing.T) {
	f := newAuthFixture(t)
	sess := f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")

	me, err := f.svc.Me(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, me.ID)
	assert.Equal(t, "aisha@example.org", me.Email)
	assert.Equal(t, entity.RoleUser, me.Role)

	_, err = f.svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
}

func TestLoginFailureIsIndistinguishableAndOpensNoSession(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	before := f.sessions.count()

	_, wrongPwd := f.svc.Login(context.Background(), "aisha@example.org", "nope-nope")
	_, unknown := f.svc.Login(context.Background(), "ghost@example.org", "password123")

	for _, err := range []error{wrongPwd, unknown} {
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		ae, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid Credentials", ae.Message)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
	}
	assert.Equal(t, before, f.sessions.count())
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	sess := f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")

	require.NoError(t, f.svc.Logout(context.Background(), sess.ID))
	assert.Equal(t, 0, f.sessions.count())

	f.sessions.destroyErr = errors.New("redis down")
	err := f.svc.Logout(context.Background(), "sid")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSession)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
}

func TestListUsersNeverExposesSecrets(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.ListUsers(context.Background())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	_, err = f.svc.RequestPasswordReset(context.Background(), "aisha@example.org")
	require.NoError(t, err)

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "aisha@example.org", users[0].Email)
	assert.IsType(t, entity.PublicUser{}, users[0])
}

func TestSearchUsers(t *testing.T) {
	f := newAuthFixture(t)
	f.index.hits = []map[string]any{{"email": "aisha@example.org"}}

	hits, err := f.svc.SearchUsers(context.Background(), "aisha", 500)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, 10, f.index.last.size)

	f.index.err = errors.New("es down")
	_, err = f.svc.SearchUsers(context.Background(), "aisha", 5)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))

	f.svc.Index = nil
	hits, err = f.svc.SearchUsers(context.Background(), "aisha", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRequestPasswordResetIssuesSixDigitCode(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	res, err := f.svc.RequestPasswordReset(context.Background(), "aisha@example.org")
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), res.ExpiresAt)

	code := f.notifier.lastCode("aisha@example.org")
	assert.Regexp(t, `^[0-9]{6}$`, code)

	u := f.users.byEmail("aisha@example.org")
	require.True(t, u.HasOTP())
	assert.NotContains(t, u.OTPHash, code)
	assert.True(t, helpers.CompareOTP(u.OTPHash, code))
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.RequestPasswordReset(context.Background(), "ghost@example.org")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Empty(t, f.notifier.otps)
}

func TestRequestPasswordResetNotifyFailureKeepsCode(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	f.notifier.otpErr = errors.New("smtp down")

	_, err := f.svc.RequestPasswordReset(context.Background(), "aisha@example.org")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
	assert.True(t, f.users.byEmail("aisha@example.org").HasOTP())
}

func TestVerifyOTP(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	ctx := context.Background()
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "aisha@example.org", "123456"), ErrInvalidOTP, "no active reset")

	_, err := f.svc.RequestPasswordReset(ctx, "aisha@example.org")
	require.NoError(t, err)
	code := f.notifier.lastCode("aisha@example.org")
	wrong := fmt.Sprintf("%06d", (mustAtoi(t, code)+1)%1_000_000)

	require.NoError(t, f.svc.VerifyOTP(ctx, "aisha@example.org", code))
	require.NoError(t, f.svc.VerifyOTP(ctx, "aisha@example.org", code), "verify does not consume the code")
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "aisha@example.org", wrong), ErrInvalidOTP)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "aisha@example.org", "abc"), ErrInvalidOTP)

	f.svc.now = func() time.Time { return now.Add(5 * time.Minute) }
	require.NoError(t, f.svc.VerifyOTP(ctx, "aisha@example.org", code), "valid up to the expiry instant")

	f.svc.now = func() time.Time { return now.Add(5*time.Minute + time.Nanosecond) }
	err = f.svc.VerifyOTP(ctx, "aisha@example.org", code)
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "aisha@example.org", wrong), ErrInvalidOTP, "wrong code wins over expiry")

	err = f.svc.VerifyOTP(ctx, "ghost@example.org", code)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestResetPasswordConsumesCode(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	ctx := context.Background()

	_, err := f.svc.RequestPasswordReset(ctx, "aisha@example.org")
	require.NoError(t, err)
	code := f.notifier.lastCode("aisha@example.org")

	res, err := f.svc.ResetPassword(ctx, "aisha@example.org", code, "new-password-1")
	require.NoError(t, err)
	assert.True(t, res.ConfirmationSent)
	assert.Equal(t, []string{"aisha@example.org"}, f.notifier.confirmations)

	u := f.users.byEmail("aisha@example.org")
	assert.False(t, u.HasOTP())
	assert.False(t, helpers.CompareHashAndPassword(u.PasswordHash, "password123"))
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "new-password-1"))

	_, err = f.svc.ResetPassword(ctx, "aisha@example.org", code, "new-password-2")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = f.svc.Login(ctx, "aisha@example.org", "new-password-1")
	assert.NoError(t, err)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	now := time.Now()
	f.svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := f.svc.RequestPasswordReset(ctx, "aisha@example.org")
	require.NoError(t, err)
	code := f.notifier.lastCode("aisha@example.org")

	f.svc.now = func() time.Time { return now.Add(6 * time.Minute) }
	_, err = f.svc.ResetPassword(ctx, "aisha@example.org", code, "new-password-1")
	assert.ErrorIs(t, err, ErrOTPExpired)
	assert.True(t, helpers.CompareHashAndPassword(f.users.byEmail("aisha@example.org").PasswordHash, "password123"))
}

func TestResetPasswordConfirmationFailureIsNonFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	ctx := context.Background()
	_, err := f.svc.RequestPasswordReset(ctx, "aisha@example.org")
	require.NoError(t, err)
	code := f.notifier.lastCode("aisha@example.org")

	f.notifier.confirmErr = errors.New("smtp down")
	res, err := f.svc.ResetPassword(ctx, "aisha@example.org", code, "new-password-1")
	require.NoError(t, err)
	assert.False(t, res.ConfirmationSent)
	assert.True(t, helpers.CompareHashAndPassword(f.users.byEmail("aisha@example.org").PasswordHash, "new-password-1"))
}

func TestConcurrentResetsForDifferentUsersKeepBothChanges(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	const n = 4
	emails := make([]string, n)
	codes := make([]string, n)
	for i := 0; i < n; i++ {
		emails[i] = fmt.Sprintf("user%d@example.org", i)
		f.signup(t, fmt.Sprintf("User %d", i), emails[i], fmt.Sprintf("555000%d", i), "password123")
		_, err := f.svc.RequestPasswordReset(ctx, emails[i])
		require.NoError(t, err)
		codes[i] = f.notifier.lastCode(emails[i])
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ResetPassword(ctx, emails[i], codes[i], fmt.Sprintf("new-password-%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		u := f.users.byEmail(emails[i])
		assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, fmt.Sprintf("new-password-%d", i)), emails[i])
		assert.False(t, u.HasOTP())
	}
}

func TestConcurrentResetsWithSameCodeApplyOnce(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	_, err := f.svc.RequestPasswordReset(ctx, "aisha@example.org")
	require.NoError(t, err)
	code := f.notifier.lastCode("aisha@example.org")

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.ResetPassword(ctx, "aisha@example.org", code, fmt.Sprintf("new-password-%d", i))
			if err == nil {
				mu.Lock()
				wins = append(wins, i)
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOTP)
		}(i)
	}
	wg.Wait()

	require.Len(t, wins, 1)
	u := f.users.byEmail("aisha@example.org")
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, fmt.Sprintf("new-password-%d", wins[0])))
}

func TestStaleWritesGiveUpWithConflict(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Aisha", "aisha@example.org", "5550001", "password123")
	f.users.staleAlways = true

	_, err := f.svc.RequestPasswordReset(context.Background(), "aisha@example.org")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Empty(t, f.notifier.otps, "nothing is sent for an uncommitted code")
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
