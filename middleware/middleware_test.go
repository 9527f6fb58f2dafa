package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hotel-booking/models"
	"hotel-booking/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockAuthenticator is a mock implementation of Authenticator for testing
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, token string) (*models.User, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func tokenAuth(valid map[string]string) *MockAuthenticator {
	return &MockAuthenticator{
		AuthenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			if id, ok := valid[token]; ok {
				return &models.User{ID: id}, nil
			}
			return nil, services.ErrSessionNotFound
		},
	}
}

func authRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/users/:id/bookings", RequireSession(auth, "sid"), RequireSameUser("id"), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user": id, "token": GetSessionToken(c)})
	})
	return r
}

func TestRequireSession(t *testing.T) {
	r := authRouter(tokenAuth(map[string]string{"good": "u1"}))

	tests := []struct {
		name   string
		path   string
		setup  func(req *http.Request)
		status int
	}{
		{"no token", "/users/u1/bookings", func(req *http.Request) {}, http.StatusUnauthorized},
		{"unknown cookie", "/users/u1/bookings", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "sid", Value: "invalid-session-cookie"})
		}, http.StatusUnauthorized},
		{"cookie", "/users/u1/bookings", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
		}, http.StatusOK},
		{"bearer", "/users/u1/bookings", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer good")
		}, http.StatusOK},
		{"other user", "/users/u2/bookings", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer good")
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "error.unauthorized")
			}
		})
	}
}

func TestRequireSession_StorageError(t *testing.T) {
	r := authRouter(&MockAuthenticator{
		AuthenticateFunc: func(ctx context.Context, token string) (*models.User, error) {
			return nil, errors.New("db down")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users/u1/bookings", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
}

// fakeRedis is an in-memory RedisClient.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func idempotentRouter(rdb RedisClient, status int, calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/bookings", Idempotency(IdempotencyConfig{Redis: rdb}), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"bookingId": "b-1", "call": *calls})
	})
	return r
}

func post(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_Replay(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	first := post(r, "k1", `{"roomId":"r1"}`)
	second := post(r, "k1", `{"roomId":"r1"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_KeyReusedWithOtherBody(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	post(r, "k1", `{"roomId":"r1"}`)
	w := post(r, "k1", `{"roomId":"r2"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_NoKey(t *testing.T) {
	calls := 0
	r := idempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	post(r, "", `{}`)
	post(r, "", `{}`)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ServerErrorNotStored(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	r := idempotentRouter(rdb, http.StatusInternalServerError, &calls)

	post(r, "k1", `{}`)
	post(r, "k1", `{}`)

	assert.Equal(t, 2, calls)
	assert.Empty(t, rdb.data)
}

func TestIdempotency_InProgress(t *testing.T) {
	rdb := newFakeRedis()
	hash := requestHash(http.MethodPost, "/bookings", []byte(`{}`))
	rdb.data[IdempotencyKeyPrefix+":k1"] = `{"status":"processing","request_hash":"` + hash + `"}`
	calls := 0
	r := idempotentRouter(rdb, http.StatusCreated, &calls)

	w := post(r, "k1", `{}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "error.requestInProgress")
	assert.Equal(t, 0, calls)
}

func TestIdempotency_FailsOpen(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	calls := 0
	r := idempotentRouter(rdb, http.StatusCreated, &calls)

	w := post(r, "k1", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestIdempotency_UnreadableBody(t *testing.T) {
	rdb := newFakeRedis()
	calls := 0
	r := idempotentRouter(rdb, http.StatusCreated, &calls)

	req := httptest.NewRequest(http.MethodPost, "/bookings", failingBody{})
	req.Header.Set(IdempotencyKeyHeader, "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error.invalidPayload")
	assert.Equal(t, 0, calls)
	assert.Empty(t, rdb.data, "key must stay free for a retry")
}
