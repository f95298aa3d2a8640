package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCookieConfig_Build(t *testing.T) {
	c := CookieConfig{Name: "jwt", SameSite: "none", Secure: true, TTL: 7 * 24 * time.Hour}
	ck := c.Build("tok")
	assert.Equal(t, "jwt", ck.Name)
	assert.Equal(t, "tok", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
	assert.Equal(t, 7*24*60*60, ck.MaxAge)
	assert.Equal(t, "/", ck.Path)

	del := c.Deletion()
	assert.Equal(t, -1, del.MaxAge)
	assert.Empty(t, del.Value)
}

func TestReadJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	assert.True(t, ReadJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "a@b.co", v.Email)

	// body vacío es válido
	r = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.True(t, ReadJSON(httptest.NewRecorder(), r, &v))

	rec := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	r.Header.Set("Content-Type", "application/json")
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`email=x`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	big := `{"email":"` + strings.Repeat("a", MaxBodySize) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	r.Header.Set("Content-Type", "application/json")
	assert.False(t, ReadJSON(rec, r, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
