package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestQueryAndTransact(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/v1/query":
			var q Query
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				t.Errorf("decode query: %v", err)
			}
			if q.Entity != "reports" || q.Where["storeId"] != "NCF-001" {
				t.Errorf("unexpected query: %+v", q)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": "r-1"}},
			})
		case "/v1/transact":
			var body struct {
				Ops []WriteOp `json:"ops"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode transact: %v", err)
			}
			if len(body.Ops) != 1 || body.Ops[0].ID != "r-2" {
				t.Errorf("unexpected ops: %+v", body.Ops)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.UseSession(Session{Token: "tok-123"})

	items, err := c.Query(context.Background(), Query{
		Entity: "reports",
		Where:  map[string]string{"storeId": "NCF-001"},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(items) != 1 || items[0]["id"] != "r-1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", gotAuth)
	}

	err = c.Transact(context.Background(), []WriteOp{{Entity: "reports", ID: "r-2"}})
	if err != nil {
		t.Fatalf("transact: %v", err)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuth},
		{"forbidden", http.StatusForbidden, ErrAuth},
		{"bad request", http.StatusBadRequest, ErrRejected},
		{"conflict", http.StatusConflict, ErrRejected},
		{"server error", http.StatusInternalServerError, ErrNetwork},
		{"bad gateway", http.StatusBadGateway, ErrNetwork},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			err := c.Transact(context.Background(), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d mapped to %v, want %v", tc.status, err, tc.want)
			}
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL)
	if _, err := c.Query(context.Background(), Query{Entity: "reports"}); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestVerifyCodeInstallsSession(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"sub":   "p-1",
		"email": "emp@ncf.example",
		"exp":   exp.Unix(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "emp@ncf.example" || body.Code != "424242" {
			t.Errorf("unexpected verify body: %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sess, err := c.VerifyCode(context.Background(), "emp@ncf.example", "424242")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.Principal.ID != "p-1" || sess.Principal.Email != "emp@ncf.example" {
		t.Fatalf("unexpected principal: %+v", sess.Principal)
	}
	if !sess.ExpiresAt.Equal(exp) {
		t.Fatalf("expiresAt = %v, want %v", sess.ExpiresAt, exp)
	}

	p, ok := c.CurrentPrincipal()
	if !ok || p.Email != "emp@ncf.example" {
		t.Fatalf("session not installed: %+v ok=%v", p, ok)
	}
}

func TestVerifyCodeRejectsTokenWithoutEmail(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "p-1"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.VerifyCode(context.Background(), "emp@ncf.example", "1"); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if _, ok := c.CurrentPrincipal(); ok {
		t.Fatal("bad token installed a session")
	}
}

func TestExpiredSessionHasNoPrincipal(t *testing.T) {
	c := NewClient("http://unused.example")
	c.UseSession(Session{
		Token:     "tok",
		Principal: Principal{ID: "p-1", Email: "emp@ncf.example"},
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if _, ok := c.CurrentPrincipal(); ok {
		t.Fatal("expired session still reports a principal")
	}
}
