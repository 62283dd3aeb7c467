package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheck_NoOpInCI(t *testing.T) {
	t.Setenv("CI", "1")
	if latest, newer, err := (Checker{URL: "http://127.0.0.1:1"}).Check(context.Background(), "1.0.0"); err != nil || latest != "" || newer {
		t.Fatalf("expected no-op in CI; got latest=%q newer=%v err=%v", latest, newer, err)
	}
}

func TestNewer(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1.2.3", "1.2.3", false},
		{"v1.3.0", "1.2.9", true},
		{"1.2.0", "1.2.1", false},
		{"1.10.0", "1.9.0", true},
		{"2.0.0", "2.0.0-rc.1", true},
		{"garbage", "1.0.0", false},
		{"1.0.0", "", false},
	}
	for _, c := range cases {
		if got := Newer(c.a, c.b); got != c.want {
			t.Fatalf("Newer(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestCheck_WithServer(t *testing.T) {
	t.Setenv("CI", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "codeguardian-updater" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tag_name": "v9.9.9"})
	}))
	defer srv.Close()

	latest, newer, err := (Checker{URL: srv.URL}).Check(context.Background(), "0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if latest != "9.9.9" || !newer {
		t.Fatalf("expected latest=9.9.9 newer=true; got %q %v", latest, newer)
	}
}

func TestCheck_ServerError(t *testing.T) {
	t.Setenv("CI", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, _, err := (Checker{URL: srv.URL}).Check(context.Background(), "0.1.0"); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
