package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendapos/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

const testSecret = "segredo-de-teste"

func protectedEngine(rl *CompanyRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if rl != nil {
		handlers = append(handlers, rl.Middleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		companyID, sellerID := Identity(c)
		c.JSON(http.StatusOK, gin.H{"company": companyID.String(), "seller": sellerID.String()})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	companyID, sellerID := uuid.New(), uuid.New()
	token, err := IssueToken(testSecret, companyID, sellerID, "Ana", time.Hour)
	require.NoError(t, err)

	w := get(protectedEngine(nil), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), companyID.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestJWTAuth_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, uuid.New(), uuid.New(), "Ana", -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("outro-segredo", uuid.New(), uuid.New(), "Ana", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{"missing": "", "expired": expired, "bad signature": foreign, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, get(protectedEngine(nil), token).Code)
		})
	}
}

func TestCompanyRateLimiter_PerCompanyBuckets(t *testing.T) {
	rl := NewCompanyRateLimiter(1, 2)
	r := protectedEngine(rl)
	a, err := IssueToken(testSecret, uuid.New(), uuid.New(), "Ana", time.Hour)
	require.NoError(t, err)
	b, err := IssueToken(testSecret, uuid.New(), uuid.New(), "Bia", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, a).Code)
	assert.Equal(t, http.StatusOK, get(r, a).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, a).Code)
	assert.Equal(t, http.StatusOK, get(r, b).Code, "other companies keep their own bucket")
}

func TestCompanyRateLimiter_Purge(t *testing.T) {
	rl := NewCompanyRateLimiter(10, 10)
	now := time.Now()
	rl.get("a", now.Add(-time.Hour))
	rl.get("b", now)

	assert.Equal(t, 1, rl.purge(now))
	assert.Len(t, rl.limiters, 1)
}

func TestClientTimeInfo(t *testing.T) {
	cases := []struct {
		name   string
		target string
		header map[string]string
		want   *struct{ tz, locale string }
	}{
		{name: "none", target: "/"},
		{name: "headers", target: "/", header: map[string]string{TimeZoneHeader: "America/Manaus", LocaleHeader: "en-US,en;q=0.8"},
			want: &struct{ tz, locale string }{"America/Manaus", "en-US"}},
		{name: "query wins", target: "/?tz=UTC&locale=es", header: map[string]string{TimeZoneHeader: "America/Manaus"},
			want: &struct{ tz, locale string }{"UTC", "es"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
			for k, v := range tc.header {
				c.Request.Header.Set(k, v)
			}
			ti := ClientTimeInfo(c)
			if tc.want == nil {
				assert.Nil(t, ti)
				return
			}
			require.NotNil(t, ti)
			assert.Equal(t, tc.want.tz, ti.TimeZone)
			assert.Equal(t, tc.want.locale, ti.Locale)
		})
	}
}

func errorEngine(h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/x", h)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AttachedDomainErrorKeepsStatus(t *testing.T) {
	r := errorEngine(func(c *gin.Context) {
		_ = c.Error(apperror.Conflict(apperror.CodeSaleInClosedClosure, "A venda pertence a um caixa já fechado"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperror.CodeSaleInClosedClosure, body["code"])
	assert.Nil(t, body["request_id"])
}

func TestErrorHandler_UnclassifiedIsOpaque500(t *testing.T) {
	r := errorEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Equal(t, "req-42", decodeBody(t, w)["request_id"])
}

func TestRecovery_PanicBecomes500WithRequestID(t *testing.T) {
	r := errorEngine(func(*gin.Context) { panic("nil map") })
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Erro interno do servidor", body["detail"])
	assert.Equal(t, "req-7", body["request_id"])
}
