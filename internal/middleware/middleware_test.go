package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  float64(42),
		"role": "INSTRUCTOR",
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := JWTAuth(testSecret)(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	rec, _ := runJWT(t, "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	rec, _ := runJWT(t, "Bearer "+signToken(t, "other-secret", time.Minute))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer "+signToken(t, testSecret, -time.Minute))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	rec, c := runJWT(t, "Bearer "+signToken(t, testSecret, time.Minute))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sub, _ := c.Get("user_id").(float64); sub != 42 {
		t.Fatalf("user_id = %v, want 42", c.Get("user_id"))
	}
	if role, _ := c.Get("role").(string); role != "INSTRUCTOR" {
		t.Fatalf("role = %v, want INSTRUCTOR", c.Get("role"))
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"allowed role", "INSTRUCTOR", []string{"INSTRUCTOR", "ADMIN"}, http.StatusOK},
		{"admin allowed", "ADMIN", []string{"INSTRUCTOR", "ADMIN"}, http.StatusOK},
		{"normal rejected", "NORMAL", []string{"INSTRUCTOR", "ADMIN"}, http.StatusForbidden},
		{"missing role", nil, []string{"INSTRUCTOR"}, http.StatusForbidden},
		{"non-string role", 12, []string{"INSTRUCTOR"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}
			next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
			if err := RequireRole(tc.allowed...)(next)(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
