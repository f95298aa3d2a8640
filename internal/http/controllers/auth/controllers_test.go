package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	mw "github.com/dropDatabas3/tandem/internal/http/middlewares"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
)

func TestToAppError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&svc.MissingFieldsError{Fields: []string{"email"}}, 400, "MISSING_FIELDS"},
		{svc.ErrMissingFields, 400, "MISSING_FIELDS"},
		{svc.ErrInvalidEmail, 400, "INVALID_FORMAT"},
		{svc.ErrPasswordTooShort, 400, "PASSWORD_TOO_SHORT"},
		{svc.ErrPasswordTooLong, 400, "PASSWORD_TOO_LONG"},
		{svc.ErrEmailTaken, 400, "EMAIL_ALREADY_IN_USE"},
		{svc.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS"},
		{svc.ErrInvalidOTP, 400, "INVALID_OTP"},
		{svc.ErrUserNotFound, 404, "USER_NOT_FOUND"},
		{fmt.Errorf("%w: smtp down", svc.ErrDelivery), 500, "EMAIL_DELIVERY_FAILED"},
		{svc.ErrChatUnavailable, 503, "SERVICE_UNAVAILABLE"},
		{errors.New("pg: connection refused"), 500, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		got := toAppError(tc.err)
		assert.Equal(t, tc.status, got.HTTPStatus, tc.err.Error())
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
	}

	missing := toAppError(&svc.MissingFieldsError{Fields: []string{"bio", "location"}})
	assert.Equal(t, []string{"bio", "location"}, missing.MissingFields)
}

// stubService responde siempre con err; el resto de los métodos no se usan.
type stubService struct {
	Service
	err error
}

func (s stubService) ForgotPassword(context.Context, string) (*svc.OTPRequestResult, error) {
	return nil, s.err
}

func (s stubService) Onboard(_ context.Context, userID string, _ svc.OnboardInput) (*repository.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &repository.User{ID: userID, IsOnboarded: true}, nil
}

func TestInternalErrorDoesNotLeakCause(t *testing.T) {
	c := NewController(stubService{err: errors.New("pg: password authentication failed for user admin")}, helpers.CookieConfig{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"a@x.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	c.ForgotPassword(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "pg:")
	assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestDeliveryFailure(t *testing.T) {
	c := NewController(stubService{err: fmt.Errorf("%w: dial tcp", svc.ErrDelivery)}, helpers.CookieConfig{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"a@x.com"}`))
	rr := httptest.NewRecorder()
	c.ForgotPassword(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "EMAIL_DELIVERY_FAILED")
	assert.NotContains(t, rr.Body.String(), "dial tcp")
}

func TestOnboardRequiresIdentity(t *testing.T) {
	c := NewController(stubService{}, helpers.CookieConfig{}, nil)
	body := `{"fullName":"Ann","bio":"hi","nativeLanguage":"es","learningLanguage":"en","location":"AR"}`

	rr := httptest.NewRecorder()
	c.Onboard(rr, httptest.NewRequest(http.MethodPost, "/api/auth/onboarding", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/onboarding", strings.NewReader(body))
	req = req.WithContext(mw.WithUserID(req.Context(), "u-9"))
	rr = httptest.NewRecorder()
	c.Onboard(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"_id":"u-9"`)
}

func TestUnsupportedContentType(t *testing.T) {
	c := NewController(stubService{}, helpers.CookieConfig{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader("email=a@x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	c.ForgotPassword(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}
