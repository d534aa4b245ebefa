package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var testSecret = []byte("test-secret")

// memoryResponseStore is an in-memory ResponseStoreInterface.
type memoryResponseStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryResponseStore() *memoryResponseStore {
	return &memoryResponseStore{data: make(map[string][]byte)}
}

func (s *memoryResponseStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[userID+":"+key], nil
}

func (s *memoryResponseStore) Set(ctx context.Context, userID, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID+":"+key] = data
	return nil
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// newWriteRouter mirrors the production ordering: auth first, then
// idempotency, then the handler. handled counts handler invocations.
func newWriteRouter(store *memoryResponseStore, handled *int32) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authed := router.Group("")
	authed.Use(AuthMiddleware(testSecret))
	authed.Use(IdempotencyMiddleware(store))
	authed.POST("/carrier/register", func(c *gin.Context) {
		atomic.AddInt32(handled, 1)
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": UserID(c)})
	})
	authed.POST("/plain", func(c *gin.Context) {
		atomic.AddInt32(handled, 1)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte("pong"))
	})
	return router
}

func doPost(router *gin.Engine, path, token, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysRepeatsForTheSameUser(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newWriteRouter(newMemoryResponseStore(), &handled)
	token := signToken(t, "user-1")

	first := doPost(router, "/carrier/register", token, "key-1")
	second := doPost(router, "/carrier/register", token, "key-1")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if handled != 1 {
		t.Errorf("expected the handler to run once, ran %d times", handled)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("expected identical bodies, got %q and %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_UnauthenticatedRepeatGets401(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newWriteRouter(newMemoryResponseStore(), &handled)

	// A stored response exists for user-1's key.
	stored := doPost(router, "/carrier/register", signToken(t, "user-1"), "key-1")
	if stored.Code != http.StatusOK {
		t.Fatalf("expected 200 for the authed call, got %d", stored.Code)
	}

	// The same key without a token must hit auth, not the replay.
	repeat := doPost(router, "/carrier/register", "", "key-1")
	if repeat.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the unauthenticated caller, got %d body=%s",
			repeat.Code, repeat.Body.String())
	}
	if strings.Contains(repeat.Body.String(), "user-1") {
		t.Error("the stored response must not leak to an unauthenticated caller")
	}
}

func TestIdempotency_KeysNeverCrossUsers(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newWriteRouter(newMemoryResponseStore(), &handled)

	first := doPost(router, "/carrier/register", signToken(t, "user-1"), "key-1")
	second := doPost(router, "/carrier/register", signToken(t, "user-2"), "key-1")

	if handled != 2 {
		t.Errorf("expected both users to reach the handler, got %d runs", handled)
	}
	if !strings.Contains(first.Body.String(), "user-1") {
		t.Errorf("unexpected first body: %s", first.Body.String())
	}
	if !strings.Contains(second.Body.String(), "user-2") {
		t.Errorf("a shared key must not replay another user's response, got: %s",
			second.Body.String())
	}
}

func TestIdempotency_ReplayKeepsTheStoredContentType(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newWriteRouter(newMemoryResponseStore(), &handled)
	token := signToken(t, "user-1")

	doPost(router, "/plain", token, "key-1")
	replay := doPost(router, "/plain", token, "key-1")

	if handled != 1 {
		t.Fatalf("expected a replay, handler ran %d times", handled)
	}
	if got := replay.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("expected the stored content type on replay, got %q", got)
	}
	if replay.Body.String() != "pong" {
		t.Errorf("unexpected replay body: %q", replay.Body.String())
	}
}

func TestIdempotency_SkipsRequestsWithoutAKey(t *testing.T) {
	t.Parallel()

	var handled int32
	router := newWriteRouter(newMemoryResponseStore(), &handled)
	token := signToken(t, "user-1")

	doPost(router, "/carrier/register", token, "")
	doPost(router, "/carrier/register", token, "")

	if handled != 2 {
		t.Errorf("keyless requests must not be deduplicated, got %d runs", handled)
	}
}
