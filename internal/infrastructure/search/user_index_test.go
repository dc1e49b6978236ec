package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

type esRecorder struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func newTestIndex(t *testing.T, rec *esRecorder, respond func(w http.ResponseWriter, r *http.Request)) *UserIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.Method+" "+r.URL.Path)
		rec.bodies = append(rec.bodies, string(b))
		rec.mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatal(err)
	}
	return NewUserIndex(es, "users")
}

func TestNewUserIndexDisabled(t *testing.T) {
	if NewUserIndex(nil, "users") != nil {
		t.Fatal("nil client must disable the index")
	}
}

func TestIndexUser(t *testing.T) {
	rec := &esRecorder{}
	x := newTestIndex(t, rec, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	if err := x.IndexUser(context.Background(), &entity.User{ID: 7, FirstName: "Alice", LastName: "Doe", Email: "alice@x.com"}); err != nil {
		t.Fatal(err)
	}
	if len(rec.requests) != 1 || !strings.HasSuffix(rec.requests[0], "/users/_doc/7") {
		t.Fatalf("requests: %v", rec.requests)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(rec.bodies[0]), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["name"] != "Alice Doe" || doc["email"] != "alice@x.com" {
		t.Fatalf("doc: %v", doc)
	}
	if _, ok := doc["password"]; ok {
		t.Fatal("password must not be indexed")
	}
}

func TestDeleteUserIgnoresMissing(t *testing.T) {
	rec := &esRecorder{}
	x := newTestIndex(t, rec, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	if err := x.DeleteUser(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if rec.requests[0] != "DELETE /users/_doc/7" {
		t.Fatalf("requests: %v", rec.requests)
	}
}

func TestSearchUsers(t *testing.T) {
	rec := &esRecorder{}
	x := newTestIndex(t, rec, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"7","_source":{"id":7,"email":"alice@x.com","first_name":"Alice","is_verified":true}}]}}`))
	})

	got, err := x.SearchUsers(context.Background(), "alice", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 7 || got[0].Email != "alice@x.com" || !got[0].IsVerified {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(rec.bodies[0], `"multi_match"`) || !strings.Contains(rec.bodies[0], `"size":5`) {
		t.Fatalf("query: %s", rec.bodies[0])
	}
}

func TestSearchUsersError(t *testing.T) {
	rec := &esRecorder{}
	x := newTestIndex(t, rec, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})
	if _, err := x.SearchUsers(context.Background(), "alice", 5); err == nil {
		t.Fatal("want error")
	}
}
