package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	token string
	err   error
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

func (f *fakeAPI) Signup(ctx context.Context, email, password string) (string, error) {
	return f.token, f.err
}

type memStore struct {
	token   string
	loadErr error
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (string, error) { return m.token, m.loadErr }
func (m *memStore) Save(ctx context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}
func (m *memStore) Clear(ctx context.Context) error {
	m.token = ""
	return nil
}

func TestGate_NotReadyBeforeInit(t *testing.T) {
	g := NewGate(&fakeAPI{}, &memStore{})
	require.False(t, g.Ready())
	require.False(t, g.IsAuthenticated())
}

func TestGate_InitRestoresPersistedSession(t *testing.T) {
	g := NewGate(&fakeAPI{}, &memStore{token: "stored"})
	require.NoError(t, g.Init(context.Background()))
	require.True(t, g.Ready())
	require.True(t, g.IsAuthenticated())
	require.Equal(t, "stored", g.Token())
}

func TestGate_LoginSuccessFlipsSessionAndPersists(t *testing.T) {
	store := &memStore{}
	g := NewGate(&fakeAPI{token: "fresh"}, store)
	require.NoError(t, g.Init(context.Background()))

	require.NoError(t, g.Login(context.Background(), "a@b.c", "pw"))
	require.True(t, g.IsAuthenticated())
	require.Equal(t, "fresh", store.token)
}

func TestGate_LoginFailureLeavesSessionUnchanged(t *testing.T) {
	g := NewGate(&fakeAPI{err: errors.New("rejected")}, &memStore{})
	require.NoError(t, g.Init(context.Background()))

	err := g.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	require.False(t, g.IsAuthenticated())
	require.Empty(t, g.Token())
}

func TestGate_LogoutIsIdempotent(t *testing.T) {
	g := NewGate(&fakeAPI{token: "tok"}, &memStore{})
	require.NoError(t, g.Init(context.Background()))
	require.NoError(t, g.Login(context.Background(), "a@b.c", "pw"))

	g.Logout(context.Background())
	require.False(t, g.IsAuthenticated())
	g.Logout(context.Background())
	require.False(t, g.IsAuthenticated())
}

func TestGate_SubscribersSeeEveryTransition(t *testing.T) {
	g := NewGate(&fakeAPI{token: "tok"}, &memStore{})
	var seen []bool
	g.Subscribe(func(authed bool) { seen = append(seen, authed) })

	require.NoError(t, g.Init(context.Background()))
	require.NoError(t, g.Login(context.Background(), "a@b.c", "pw"))
	g.Logout(context.Background())

	require.Equal(t, []bool{false, true, false}, seen)
}

func TestGate_TokenReadFreshAfterLogout(t *testing.T) {
	g := NewGate(&fakeAPI{token: "tok"}, &memStore{})
	require.NoError(t, g.Init(context.Background()))
	require.NoError(t, g.Login(context.Background(), "a@b.c", "pw"))

	source := g.Token
	require.Equal(t, "tok", source())
	g.Logout(context.Background())
	require.Equal(t, "", source())
}
