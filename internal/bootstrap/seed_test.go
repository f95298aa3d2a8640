package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/dropDatabas3/tandem/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/tandem/internal/jwt"
	"github.com/dropDatabas3/tandem/internal/security/password"
	"github.com/dropDatabas3/tandem/internal/store/memory"
)

type nopNotifier struct{}

func (nopNotifier) SendOTP(context.Context, string, string, string) error  { return nil }
func (nopNotifier) SendResetSuccess(context.Context, string, string) error { return nil }

func TestSeedUsers(t *testing.T) {
	users := memory.NewUserStore()
	iss, err := jwtx.NewIssuer("seed-secret", "tandem", time.Hour)
	require.NoError(t, err)
	svc := authsvc.NewService(authsvc.Deps{
		Users:    users,
		Hasher:   password.Bcrypt{Cost: 4},
		Tokens:   iss,
		Notifier: nopNotifier{},
	})

	seed := []SeedUser{
		{Email: "demo@tandem.dev", Password: "demo123", FullName: "Demo"},
		{Email: "maria@tandem.dev", Password: "demo123", FullName: "María", Profile: &authsvc.OnboardInput{
			FullName: "María", Bio: "Hola", NativeLanguage: "spanish", LearningLanguage: "english", Location: "Madrid",
		}},
	}
	ctx := context.Background()

	n, err := SeedUsers(ctx, svc, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	u, err := users.GetByEmail(ctx, "maria@tandem.dev")
	require.NoError(t, err)
	assert.True(t, u.IsOnboarded)

	// re-ejecutable
	n, err = SeedUsers(ctx, svc, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = SeedUsers(ctx, svc, []SeedUser{{Email: "bad", Password: "demo123", FullName: "X"}})
	assert.ErrorIs(t, err, authsvc.ErrInvalidEmail)
}

func TestLoadSeedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
users:
  - email: demo@tandem.dev
    password: demo123
    full_name: Demo
  - email: maria@tandem.dev
    password: demo123
    full_name: María
    native_language: spanish
    learning_language: english
    bio: Hola
    location: Madrid
`), 0o600))

	got, err := LoadSeedFile(p)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Profile)
	require.NotNil(t, got[1].Profile)
	assert.Equal(t, "english", got[1].Profile.LearningLanguage)
	assert.Equal(t, "María", got[1].Profile.FullName)
}
