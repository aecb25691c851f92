package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "authz-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(cfg AuthzConfig) *gin.Engine {
	r := gin.New()
	r.GET("/protected", NewAuthz(cfg).Require("orders.manage"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func request(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthz_Require(t *testing.T) {
	router := protectedRouter(AuthzConfig{Secret: testSecret})

	valid := jwt.MapClaims{
		"sub":   "operator-1",
		"perms": []string{"orders.manage"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{
			name:  "no token",
			token: "",
			want:  http.StatusUnauthorized,
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
			want:  http.StatusUnauthorized,
		},
		{
			name:  "wrong secret",
			token: signToken(t, "other-secret", valid),
			want:  http.StatusUnauthorized,
		},
		{
			name: "expired",
			token: signToken(t, testSecret, jwt.MapClaims{
				"perms": []string{"orders.manage"},
				"exp":   time.Now().Add(-time.Hour).Unix(),
			}),
			want: http.StatusUnauthorized,
		},
		{
			name: "missing permission",
			token: signToken(t, testSecret, jwt.MapClaims{
				"perms": []string{"orders.read"},
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
			want: http.StatusForbidden,
		},
		{
			name: "no perms claim",
			token: signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			want: http.StatusForbidden,
		},
		{
			name:  "valid",
			token: signToken(t, testSecret, valid),
			want:  http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := request(router, tt.token).Code; got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthz_IssuerAudience(t *testing.T) {
	router := protectedRouter(AuthzConfig{
		Secret:   testSecret,
		Issuer:   "nucoffee-auth",
		Audience: "nucoffee-orders",
	})

	base := jwt.MapClaims{
		"perms": []string{"orders.manage"},
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iss":   "nucoffee-auth",
		"aud":   "nucoffee-orders",
	}

	if got := request(router, signToken(t, testSecret, base)).Code; got != http.StatusNoContent {
		t.Fatalf("valid iss/aud: status = %d", got)
	}

	wrongIss := jwt.MapClaims{}
	for k, v := range base {
		wrongIss[k] = v
	}
	wrongIss["iss"] = "someone-else"
	if got := request(router, signToken(t, testSecret, wrongIss)).Code; got != http.StatusUnauthorized {
		t.Fatalf("wrong iss: status = %d, want 401", got)
	}

	wrongAud := jwt.MapClaims{}
	for k, v := range base {
		wrongAud[k] = v
	}
	wrongAud["aud"] = "other-service"
	if got := request(router, signToken(t, testSecret, wrongAud)).Code; got != http.StatusUnauthorized {
		t.Fatalf("wrong aud: status = %d, want 401", got)
	}
}
