package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	stream "github.com/GetStream/stream-chat-go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	upserted []*stream.User
	err      error
}

func (f *fakeAPI) UpsertUser(_ context.Context, u *stream.User) (*stream.UpsertUserResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = append(f.upserted, u)
	return &stream.UpsertUserResponse{}, nil
}

func (f *fakeAPI) CreateToken(userID string, _ time.Time, _ ...time.Time) (string, error) {
	return "tok-" + userID, f.err
}

func TestStream_UpsertProfile(t *testing.T) {
	api := &fakeAPI{}
	s := &Stream{api: api, timeout: time.Second}

	res := s.UpsertProfile(context.Background(), Profile{ID: "u1", Name: "Ana", Image: "img"})
	assert.True(t, res.Synced)
	assert.NoError(t, res.Err)
	require.Len(t, api.upserted, 1)
	assert.Equal(t, "u1", api.upserted[0].ID)
	assert.Equal(t, "Ana", api.upserted[0].Name)
	assert.Equal(t, "img", api.upserted[0].Image)
}

func TestStream_UpsertProfile_ErrorIsReportedNotRaised(t *testing.T) {
	s := &Stream{api: &fakeAPI{err: errors.New("down")}, timeout: time.Second}
	res := s.UpsertProfile(context.Background(), Profile{ID: "u1"})
	assert.False(t, res.Synced)
	assert.Error(t, res.Err)
}

func TestStream_CreateToken(t *testing.T) {
	s := &Stream{api: &fakeAPI{}, timeout: time.Second}
	tok, err := s.CreateToken("u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-u1", tok)

	_, err = s.CreateToken("")
	assert.Error(t, err)
}

func TestNewStream_MissingCredentials(t *testing.T) {
	_, err := NewStream("", "secret")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNoop(t *testing.T) {
	res := Noop{}.UpsertProfile(context.Background(), Profile{ID: "u"})
	assert.True(t, res.Skipped)
	_, err := Noop{}.CreateToken("u")
	assert.ErrorIs(t, err, ErrUnavailable)
}
