package supastore

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	postgrest "github.com/supabase-community/postgrest-go"
)

// fakeREST is a tiny PostgREST stand-in: eq filters, insert, patch and
// delete over in-memory tables keyed by the "id" column.
type fakeREST struct {
	mu       sync.Mutex
	tables   map[string][]map[string]any
	requests []*http.Request
	nextID   int64
}

func newFakeREST(t *testing.T) (*fakeREST, *postgrest.Client) {
	t.Helper()
	f := &fakeREST{tables: make(map[string][]map[string]any)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return f, newRESTClient(t, srv.URL, "service-key")
}

// newRESTClient talks to a PostgREST server directly, without the
// Supabase gateway in front of it.
func newRESTClient(t *testing.T, baseURL, key string) *postgrest.Client {
	t.Helper()
	client := postgrest.NewClient(baseURL+"/rest/v1", "", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	require.NoError(t, client.ClientError)
	return client
}

func (f *fakeREST) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	if r.Header.Get("apikey") != "service-key" || r.Header.Get("Authorization") != "Bearer service-key" {
		writeError(w, http.StatusUnauthorized, "PGRST301", "missing key")
		return
	}
	table, ok := strings.CutPrefix(r.URL.Path, "/rest/v1/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if v, ok := strings.CutPrefix(values[0], "eq."); ok {
			filters[key] = v
		}
	}
	match := func(row map[string]any) bool {
		for col, want := range filters {
			got, _ := row[col].(string)
			if got != want {
				return false
			}
		}
		return true
	}

	switch r.Method {
	case http.MethodGet:
		out := []map[string]any{}
		for _, row := range f.tables[table] {
			if match(row) {
				out = append(out, row)
			}
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row map[string]any
		if err := json.Unmarshal(body, &row); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
			return
		}
		if _, hasID := row["id"]; !hasID {
			f.nextID++
			row["id"] = float64(f.nextID)
		}
		for _, existing := range f.tables[table] {
			if existing["id"] == row["id"] {
				writeError(w, http.StatusConflict, "23505", "duplicate key value violates unique constraint")
				return
			}
		}
		f.tables[table] = append(f.tables[table], row)
		if strings.Contains(r.Header.Get("Prefer"), "return=minimal") {
			w.WriteHeader(http.StatusCreated)
			return
		}
		writeJSON(w, http.StatusCreated, []map[string]any{row})

	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var patch map[string]any
		if err := json.Unmarshal(body, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
			return
		}
		out := []map[string]any{}
		for _, row := range f.tables[table] {
			if match(row) {
				for k, v := range patch {
					row[k] = v
				}
				out = append(out, row)
			}
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodDelete:
		kept := []map[string]any{}
		out := []map[string]any{}
		for _, row := range f.tables[table] {
			if match(row) {
				out = append(out, row)
			} else {
				kept = append(kept, row)
			}
		}
		f.tables[table] = kept
		writeJSON(w, http.StatusOK, out)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
