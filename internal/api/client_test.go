package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGroupPrograms_SendsTokenAndDecodes(t *testing.T) {
	var auth, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_, _ = w.Write([]byte(`[{"id": 7, "name": "Acme"}, {"id": "x-9", "name": "Beta"}]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "tok", "", 5*time.Second)
	progs, err := c.GroupPrograms(context.Background(), "3")
	if err != nil {
		t.Fatalf("GroupPrograms: %v", err)
	}
	if auth != "Token tok" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if path != "/api/groups/3/programs/" {
		t.Fatalf("unexpected path %q", path)
	}
	if len(progs) != 2 || progs[0].ID != "7" || progs[1].ID != "x-9" || progs[1].Name != "Beta" {
		t.Fatalf("unexpected programs: %+v", progs)
	}
}

func TestProgramScopes_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok", "Bearer", 5*time.Second)
	_, err := c.ProgramScopes(context.Background(), "7")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want *StatusError, got %T %v", err, err)
	}
	if se.Code != http.StatusForbidden || se.Body != "nope" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestGetJSON_DecodeFailureIsNotStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok", "Token", 5*time.Second)
	_, err := c.GroupPrograms(context.Background(), "1")
	if err == nil {
		t.Fatalf("expected decode error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Fatalf("decode failure must not be a status error")
	}
}

func TestUploadResults_Body(t *testing.T) {
	var got Upload
	var method string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok", "Token", 5*time.Second)
	err := c.UploadResults(context.Background(), Upload{
		ScanType: "ping-check", Results: "# Ping Scan Results\n", FileName: "ping_results_x.txt", DeviceID: "dev",
	})
	if err != nil {
		t.Fatalf("UploadResults: %v", err)
	}
	if method != http.MethodPost || got.ScanType != "ping-check" || got.DeviceID != "dev" {
		t.Fatalf("unexpected upload: %s %+v", method, got)
	}
}

func TestUploadResults_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "tok", "Token", 5*time.Second)
	if err := c.UploadResults(context.Background(), Upload{}); err == nil {
		t.Fatalf("201 should be reported as a failed upload")
	}
}

func TestScopeHostAndIDMarshal(t *testing.T) {
	if h := (Scope{Domain: "", Target: " t.example "}).Host(); h != "t.example" {
		t.Fatalf("target fallback failed: %q", h)
	}
	if h := (Scope{Domain: "d.example", Target: "t.example"}).Host(); h != "d.example" {
		t.Fatalf("domain should win: %q", h)
	}
	b, _ := json.Marshal(Program{ID: "12", Name: "n"})
	if string(b) != `{"id":12,"name":"n"}` {
		t.Fatalf("numeric id should marshal as number: %s", b)
	}
	b, _ = json.Marshal(Program{ID: "abc", Name: "n"})
	if string(b) != `{"id":"abc","name":"n"}` {
		t.Fatalf("string id should marshal as string: %s", b)
	}
}
