package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore returns a store on Valkey DB 15, skipping when Valkey is down.
func testStore(t *testing.T, secure bool) (*Store, *redis.Client) {
	t.Helper()

	addr := envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		if keys, _ := client.Keys(ctx, keyPrefix+"*").Result(); len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return NewStore(client, secure, time.Hour), client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// start creates a session and returns a request carrying its cookie.
func start(t *testing.T, store *Store, data *Data) (*http.Request, *http.Cookie) {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := store.Create(context.Background(), rr, data)
	require.NoError(t, err)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestStore_CreateAndGet(t *testing.T) {
	store, client := testStore(t, false)
	ctx := context.Background()

	userID := uuid.New()
	req, cookie := start(t, store, &Data{UserID: userID, Username: "anna"})

	assert.Equal(t, CookieName, cookie.Name)
	assert.Len(t, cookie.Value, 2*idLength)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)

	ttl, err := client.TTL(ctx, keyPrefix+cookie.Value).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := store.Get(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "anna", got.Username)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.Authenticated(), "2FA step still pending")
}

func TestStore_SecureCookie(t *testing.T) {
	store, _ := testStore(t, true)
	_, cookie := start(t, store, &Data{UserID: uuid.New(), Username: "secure"})
	assert.True(t, cookie.Secure)
}

func TestStore_GetWithoutSession(t *testing.T) {
	store, _ := testStore(t, false)
	ctx := context.Background()

	got, err := store.Get(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.Nil(t, got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "expired-or-forged"})
	got, err = store.Get(ctx, req)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Update(t *testing.T) {
	store, _ := testStore(t, false)
	ctx := context.Background()

	data := &Data{UserID: uuid.New(), Username: "anna"}
	req, _ := start(t, store, data)

	data.TwoFADone = true
	data.Username = "anna2"
	require.NoError(t, store.Update(ctx, req, data))

	got, err := store.Get(ctx, req)
	require.NoError(t, err)
	assert.True(t, got.Authenticated())
	assert.Equal(t, "anna2", got.Username)

	err = store.Update(ctx, httptest.NewRequest(http.MethodGet, "/", nil), data)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Destroy(t *testing.T) {
	store, client := testStore(t, false)
	ctx := context.Background()

	req, cookie := start(t, store, &Data{UserID: uuid.New(), Username: "bye"})

	rr := httptest.NewRecorder()
	require.NoError(t, store.Destroy(ctx, rr, req))

	cleared := rr.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Equal(t, -1, cleared[0].MaxAge)

	n, err := client.Exists(ctx, keyPrefix+cookie.Value).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	rr = httptest.NewRecorder()
	assert.NoError(t, store.Destroy(ctx, rr, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, rr.Result().Cookies(), "nothing to clear without a cookie")
}

func TestStore_Flashes(t *testing.T) {
	store, _ := testStore(t, false)
	ctx := context.Background()

	data := &Data{UserID: uuid.New(), Username: "flash", TwoFADone: true}
	req, _ := start(t, store, data)

	require.NoError(t, store.AddFlash(ctx, req, data, FlashSuccess, "Saved."))
	require.NoError(t, store.AddFlash(ctx, req, data, FlashError, "Not yours."))

	loaded, err := store.Get(ctx, req)
	require.NoError(t, err)
	flashes, err := store.PopFlashes(ctx, req, loaded)
	require.NoError(t, err)
	assert.Equal(t, []Flash{
		{Kind: FlashSuccess, Message: "Saved."},
		{Kind: FlashError, Message: "Not yours."},
	}, flashes)

	loaded, err = store.Get(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, loaded.Flashes)
	assert.True(t, loaded.Authenticated())

	flashes, err = store.PopFlashes(ctx, req, loaded)
	assert.NoError(t, err)
	assert.Nil(t, flashes)
}

func TestData_Authenticated(t *testing.T) {
	var anon *Data
	assert.False(t, anon.Authenticated())
	assert.False(t, (&Data{TwoFADone: true}).Authenticated())
	assert.False(t, (&Data{UserID: uuid.New()}).Authenticated())
	assert.True(t, (&Data{UserID: uuid.New(), TwoFADone: true}).Authenticated())
}
