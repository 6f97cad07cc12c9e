package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// fakeWeavy is an in-process stand-in for the platform API. It records every
// call in order and fails the ones listed in failures.
type fakeWeavy struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []string
	bodies   map[string]map[string]any
	blobs    []uploadedBlob
	failures map[string]int
}

type uploadedBlob struct {
	Filename    string
	ContentType string
	Content     string
}

func newFakeWeavy() *fakeWeavy {
	f := &fakeWeavy{
		bodies:   make(map[string]map[string]any),
		failures: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/agents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{
			{"id": 1, "uid": "alpha", "name": "Alpha"},
			{"id": 2, "uid": "beta", "name": "Beta"},
		}})
	})
	mux.HandleFunc("GET /api/agents/{uid}", func(w http.ResponseWriter, r *http.Request) {
		uid := r.PathValue("uid")
		writeJSON(w, map[string]any{"uid": uid, "name": uid, "instructions": "Instructions for " + uid})
	})
	mux.HandleFunc("GET /api/agents/{uid}/knowledge", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{{"id": 500, "type": "files"}}})
	})
	mux.HandleFunc("POST /api/agents", func(w http.ResponseWriter, r *http.Request) {
		body := f.body(r)
		body["id"] = 303
		writeJSON(w, body)
	})
	mux.HandleFunc("PATCH /api/agents/{uid}", func(w http.ResponseWriter, r *http.Request) {
		body := f.body(r)
		body["uid"] = r.PathValue("uid")
		writeJSON(w, body)
	})
	mux.HandleFunc("DELETE /api/agents/{uid}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/apps", func(w http.ResponseWriter, r *http.Request) {
		body := f.body(r)
		body["id"] = 202
		writeJSON(w, body)
	})
	mux.HandleFunc("DELETE /api/apps/{app}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/apps/{app}/files", func(w http.ResponseWriter, r *http.Request) {
		body := f.body(r)
		writeJSON(w, map[string]any{"id": 404, "name": body["name"], "kind": "text"})
	})
	mux.HandleFunc("POST /api/blobs", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)

		f.mu.Lock()
		f.blobs = append(f.blobs, uploadedBlob{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     string(content),
		})
		f.mu.Unlock()

		writeJSON(w, map[string]any{"id": 101, "name": header.Filename})
	})
	mux.HandleFunc("POST /api/users/{email}/tokens", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "token-for-" + r.PathValue("email")})
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.calls = append(f.calls, call)
		status, fail := f.failures[call]
		f.mu.Unlock()

		if fail {
			http.Error(w, fmt.Sprintf(`{"status": %d}`, status), status)
			return
		}
		mux.ServeHTTP(w, r)
	}))

	return f
}

// fail makes every call matching "METHOD /path" answer with status.
func (f *fakeWeavy) fail(call string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[call] = status
}

func (f *fakeWeavy) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.blobs = nil
	f.bodies = make(map[string]map[string]any)
	f.failures = make(map[string]int)
}

func (f *fakeWeavy) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeWeavy) Blobs() []uploadedBlob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uploadedBlob(nil), f.blobs...)
}

// Body returns the last JSON body received for call.
func (f *fakeWeavy) Body(call string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[call]
}

func (f *fakeWeavy) body(r *http.Request) map[string]any {
	body := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.bodies[r.Method+" "+r.URL.Path] = body
	f.mu.Unlock()

	copied := make(map[string]any, len(body))
	for k, v := range body {
		copied[k] = v
	}
	return copied
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// memoryJournal keeps workflow runs in memory.
type memoryJournal struct {
	mu    sync.Mutex
	runs  []*domain.WorkflowRun
	steps map[string][]domain.WorkflowStep
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{steps: make(map[string][]domain.WorkflowStep)}
}

func (j *memoryJournal) StartRun(_ context.Context, run *domain.WorkflowRun) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, run)
	return nil
}

func (j *memoryJournal) RecordStep(_ context.Context, step *domain.WorkflowStep) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps[step.RunID] = append(j.steps[step.RunID], *step)
	return nil
}

func (j *memoryJournal) FinishRun(context.Context, *domain.WorkflowRun) error {
	return nil
}

// lastRun returns the most recent run with its steps attached.
func (j *memoryJournal) lastRun() *domain.WorkflowRun {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.runs) == 0 {
		return nil
	}
	run := *j.runs[len(j.runs)-1]
	run.Steps = j.steps[run.ID]
	return &run
}

func (j *memoryJournal) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.runs)
}
