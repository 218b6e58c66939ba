package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubTokens struct {
	token string
}

func (s stubTokens) Token() string {
	return s.token
}

func TestClientBaseURLNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing slash trimmed", "http://localhost:8000/api/v1/", "http://localhost:8000/api/v1"},
		{"scheme added", "localhost:8000/api/v1", "http://localhost:8000/api/v1"},
		{"https kept", "https://backend/api/v1", "https://backend/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.in, nil)
			if c.BaseURL() != tt.want {
				t.Fatalf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestClientAddsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, stubTokens{token: "secret-token"})

	var out map[string]bool
	if err := c.Get(context.Background(), "/products/", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer secret-token")
	}
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, stubTokens{})

	var out map[string]any
	if err := c.Get(context.Background(), "/products/", nil, &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty", gotAuth)
	}
}

func TestClientDecodesErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"name is required"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)

	err := c.Post(context.Background(), "/products/", map[string]string{}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d", httpErr.Status, http.StatusBadRequest)
	}
	if httpErr.Detail != "name is required" {
		t.Fatalf("Detail = %q, want %q", httpErr.Detail, "name is required")
	}
	if !IsBadRequest(err) {
		t.Fatal("IsBadRequest() = false, want true")
	}
}

func TestClientUnauthorizedHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Invalid token"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, stubTokens{token: "expired"})

	calls := 0
	c.SetUnauthorizedHook(func() {
		calls++
	})

	err := c.Get(context.Background(), "/users/me", nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized() = false for %v", err)
	}
	if calls != 1 {
		t.Fatalf("hook called %d times, want 1", calls)
	}

	// Обработчик срабатывает на каждый 401, а не только на первый.
	if err := c.Get(context.Background(), "/users/me", nil, nil); err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 2 {
		t.Fatalf("hook called %d times after second 401, want 2", calls)
	}
}

func TestClientPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("username") != "admin@coffee.shop" {
			t.Errorf("username = %q", r.PostFormValue("username"))
		}
		io.WriteString(w, `{"access_token":"t"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)

	form := map[string][]string{
		"username": {"admin@coffee.shop"},
		"password": {"secret"},
	}

	var out map[string]string
	if err := c.PostForm(context.Background(), "/auth/login", form, &out); err != nil {
		t.Fatalf("PostForm() error: %v", err)
	}
	if out["access_token"] != "t" {
		t.Fatalf("access_token = %q", out["access_token"])
	}
}

func TestClientMultipartUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("name"); got != "Latte" {
			t.Errorf("name = %q", got)
		}
		file, header, err := r.FormFile("image_file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "latte.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "image-bytes" {
			t.Errorf("file contents = %q", data)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":1}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)

	upload := &FileUpload{
		Name:   "latte.png",
		Reader: strings.NewReader("image-bytes"),
	}

	var out map[string]int
	err := c.PostMultipart(context.Background(), "/products/", map[string]string{"name": "Latte"}, upload, &out)
	if err != nil {
		t.Fatalf("PostMultipart() error: %v", err)
	}
	if out["id"] != 1 {
		t.Fatalf("id = %d, want 1", out["id"])
	}
}
