package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

func authAttempt(handler http.Handler, path, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimitKeepsBodyForHandler(t *testing.T) {
	client, _ := newRedis(t)
	var seen string
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 2, 2), client, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(raw)
			w.WriteHeader(http.StatusOK)
		}))

	rec := authAttempt(handler, "/api/v1/auth/login", "1.2.3.4:5678", `{"email":"tester@example.com","password":"secret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, `"email":"tester@example.com"`)
}

func TestAuthRateLimitBlocksPerSubject(t *testing.T) {
	cases := []struct {
		name     string
		policy   AuthRateLimitPolicy
		attempts []struct{ remote, body string }
		want     []int
	}{
		{
			name:   "email limit ignores case and address",
			policy: NewAuthRateLimitPolicy("login", time.Minute, 0, 2),
			attempts: []struct{ remote, body string }{
				{"1.2.3.4:1", `{"email":"blocked@example.com"}`},
				{"5.6.7.8:1", `{"email":"Blocked@Example.com"}`},
				{"9.9.9.9:1", `{"email":"blocked@example.com"}`},
			},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:   "ip limit spans emails",
			policy: NewAuthRateLimitPolicy("register", time.Minute, 1, 0),
			attempts: []struct{ remote, body string }{
				{"5.6.7.8:1234", `{"email":"a@example.com"}`},
				{"5.6.7.8:4321", `{"email":"b@example.com"}`},
				{"5.6.7.9:1234", `{"email":"b@example.com"}`},
			},
			want: []int{http.StatusOK, http.StatusTooManyRequests, http.StatusOK},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newRedis(t)
			handler := AuthRateLimit(tc.policy, client, nil)(okHandler())
			for i, attempt := range tc.attempts {
				rec := authAttempt(handler, "/api/v1/auth/login", attempt.remote, attempt.body)
				require.Equal(t, tc.want[i], rec.Code, "attempt %d", i)
				if rec.Code == http.StatusTooManyRequests {
					assert.Equal(t, string(pkgerrors.CodeRateLimit), failureCode(t, rec))
					assert.Equal(t, "60", rec.Header().Get("Retry-After"))
				}
			}
		})
	}
}

func TestAuthRateLimitWindowResetsAndHidesEmail(t *testing.T) {
	client, mr := newRedis(t)
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 1), client, nil)(okHandler())
	body := `{"email":"Shopper@Example.com"}`

	require.Equal(t, http.StatusOK, authAttempt(handler, "/login", "", body).Code)
	require.Equal(t, http.StatusTooManyRequests, authAttempt(handler, "/login", "", body).Code)

	key := client.RateLimitKey("login:email:" + emailDigest("shopper@example.com"))
	assert.True(t, mr.Exists(key), "expected counter at %s", key)
	for _, k := range mr.Keys() {
		assert.NotContains(t, k, "shopper", "raw email must not appear in keys")
	}

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, authAttempt(handler, "/login", "", body).Code)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	client, mr := newRedis(t)
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 0), client, nil)(okHandler())
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, authAttempt(handler, "/login", "1.1.1.1:1", `{"email":"x@example.com"}`).Code)
	}
	assert.Empty(t, mr.Keys())
}
