package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sau-portal/auth-gateway/internal/config"
	"github.com/sau-portal/auth-gateway/internal/domain"
	"github.com/sau-portal/auth-gateway/internal/repository/memory"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{
		JWTSecret:      "test-secret",
		CookieTTLHours: 1,
	}
	os.Exit(m.Run())
}

// fakeCache mimics the cache contract: Get reports an absent key as an empty
// value with no error; errors mean the cache is unreachable. The fail gates
// simulate partial outages.
type fakeCache struct {
	mu            sync.Mutex
	m             map[string]string
	failSet       bool
	failDel       bool
	failGetPrefix string
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache unreachable")
	}
	switch v := value.(type) {
	case string:
		c.m[key] = v
	case []byte:
		c.m[key] = string(v)
	}
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGetPrefix != "" && strings.HasPrefix(key, c.failGetPrefix) {
		return "", errors.New("cache unreachable")
	}
	return c.m[key], nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDel {
		return errors.New("cache unreachable")
	}
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func TestIssueAndValidate(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), nil)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if sess.Token == "" || sess.State != domain.SessionActive {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if cookieValue == "" {
		t.Fatal("expected a signed cookie value")
	}

	got, err := svc.Validate(ctx, cookieValue)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.Subject != "test-stud" {
		t.Fatalf("session bound to wrong subject: %q", got.Subject)
	}
	if got.Token != sess.Token {
		t.Fatalf("validated a different session")
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), nil)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sess, _, err := svc.Issue(ctx, "test-stud")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if seen[sess.Token] {
			t.Fatalf("token collision: %s", sess.Token)
		}
		seen[sess.Token] = true
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), nil)
	ctx := context.Background()

	for _, cookieValue := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Validate(ctx, cookieValue); !errors.Is(err, ErrNoSession) {
			t.Errorf("Validate(%q) = %v, want ErrNoSession", cookieValue, err)
		}
	}
}

func TestValidateUnknownAndRevokedAreIndistinguishable(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), nil)
	ctx := context.Background()

	_, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := svc.RevokePresented(ctx, cookieValue); err != nil {
		t.Fatalf("RevokePresented failed: %v", err)
	}

	_, errRevoked := svc.Validate(ctx, cookieValue)
	_, errUnknown := svc.ValidateToken(ctx, "never-issued")

	if !errors.Is(errRevoked, ErrNoSession) || !errors.Is(errUnknown, ErrNoSession) {
		t.Fatalf("revoked=%v unknown=%v, both must be ErrNoSession", errRevoked, errUnknown)
	}
	if errRevoked.Error() != errUnknown.Error() {
		t.Fatalf("revoked and unknown errors differ: %q vs %q", errRevoked, errUnknown)
	}
}

func TestRevokeIsIdempotentAndSilentOnUnknown(t *testing.T) {
	svc := NewService(memory.NewSessionStore(), nil)
	ctx := context.Background()

	sess, _, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("first Revoke failed: %v", err)
	}
	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
	if err := svc.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("Revoke of unknown token errored: %v", err)
	}
	if err := svc.Revoke(ctx, ""); err != nil {
		t.Fatalf("Revoke of empty token errored: %v", err)
	}
}

func TestTouchAdvancesLastSeen(t *testing.T) {
	store := memory.NewSessionStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	sess, _, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	before := sess.LastSeenAt
	time.Sleep(5 * time.Millisecond)
	svc.Touch(ctx, sess.Token)

	got, _ := store.GetByToken(ctx, sess.Token)
	if !got.LastSeenAt.After(before) {
		t.Fatalf("LastSeenAt did not advance: %v -> %v", before, got.LastSeenAt)
	}
}

func TestBlocklistShortCircuitsValidation(t *testing.T) {
	cache := newFakeCache()
	svc := NewService(memory.NewSessionStore(), cache)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, ok := cache.m[blockedSessionKeyPrefix+sess.Token]; !ok {
		t.Fatal("revoked token missing from blocklist")
	}
	if _, ok := cache.m[sessionKeyPrefix+sess.Token]; ok {
		t.Fatal("revoked session still cached")
	}
	if _, err := svc.Validate(ctx, cookieValue); !errors.Is(err, ErrNoSession) {
		t.Fatalf("blocklisted session validated: %v", err)
	}
}

func TestRevokeFailsClosedWhenBlocklistUnreachable(t *testing.T) {
	cache := newFakeCache()
	store := memory.NewSessionStore()
	svc := NewService(store, cache)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cache.failSet = true
	cache.failDel = true
	if err := svc.Revoke(ctx, sess.Token); err == nil {
		t.Fatal("Revoke reported success with the blocklist unreachable")
	}

	// Nothing half-revoked: the record is still ACTIVE everywhere, so a
	// caller knows the revocation did not happen and can retry.
	got, _ := store.GetByToken(ctx, sess.Token)
	if got.State != domain.SessionActive {
		t.Fatalf("failed Revoke left state = %s, want ACTIVE", got.State)
	}

	cache.failSet = false
	cache.failDel = false
	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("retried Revoke failed: %v", err)
	}
	if _, err := svc.Validate(ctx, cookieValue); !errors.Is(err, ErrNoSession) {
		t.Fatalf("revoked session still validates: %v", err)
	}
}

func TestRevokedSessionNeverServedFromStaleCache(t *testing.T) {
	cache := newFakeCache()
	store := memory.NewSessionStore()
	svc := NewService(store, cache)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// The cached copy of the record survives the revocation.
	cache.failDel = true
	if err := svc.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, ok := cache.m[sessionKeyPrefix+sess.Token]; !ok {
		t.Fatal("precondition lost: record no longer cached")
	}

	if _, err := svc.Validate(ctx, cookieValue); !errors.Is(err, ErrNoSession) {
		t.Fatalf("revoked session still validates via stale cache: %v", err)
	}
}

func TestValidateBypassesCacheWhenBlocklistUnreachable(t *testing.T) {
	cache := newFakeCache()
	store := memory.NewSessionStore()
	svc := NewService(store, cache)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Revoke in the authoritative store only; the cached copy stays ACTIVE.
	if err := store.Revoke(ctx, sess.Token); err != nil {
		t.Fatalf("store revoke failed: %v", err)
	}
	cache.failGetPrefix = blockedSessionKeyPrefix

	if _, err := svc.Validate(ctx, cookieValue); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stale cached record trusted without a blocklist answer: %v", err)
	}
}

func TestCachePopulatedOnValidate(t *testing.T) {
	cache := newFakeCache()
	svc := NewService(memory.NewSessionStore(), cache)
	ctx := context.Background()

	sess, cookieValue, err := svc.Issue(ctx, "test-stud")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cached, ok := cache.m[sessionKeyPrefix+sess.Token]
	if !ok {
		t.Fatal("issued session not cached")
	}
	if !strings.Contains(cached, sess.Token) {
		t.Fatalf("cached payload does not carry the token: %s", cached)
	}

	if _, err := svc.Validate(ctx, cookieValue); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestIdleTimeoutRevokesSession(t *testing.T) {
	old := config.AppConfig.SessionIdleTimeoutMin
	config.AppConfig.SessionIdleTimeoutMin = 1
	defer func() { config.AppConfig.SessionIdleTimeoutMin = old }()

	store := memory.NewSessionStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	stale := &domain.Session{
		Token:      "tok-idle",
		Subject:    "test-stud",
		CreatedAt:  time.Now().Add(-time.Hour),
		LastSeenAt: time.Now().Add(-2 * time.Minute),
		State:      domain.SessionActive,
	}
	if err := store.Create(ctx, stale); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, stale.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("idle session validated: %v", err)
	}
	got, _ := store.GetByToken(ctx, stale.Token)
	if got.State != domain.SessionRevoked {
		t.Fatalf("idle session not revoked, state = %s", got.State)
	}
}
