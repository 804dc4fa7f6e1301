package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/danpilch/busfinder/internal/catalog"
	"github.com/danpilch/busfinder/internal/config"
	"github.com/danpilch/busfinder/internal/render"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Buses: []catalog.Bus{
			{Number: "S12", Name: "Howrah - Sealdah", Type: "yellow", Stops: []string{"Howrah Station", "Esplanade", "Sealdah"}},
			{Number: "AC20", Name: "Sealdah - Airport", Type: "blue", Stops: []string{"Sealdah", "Lake Town", "Airport"}},
		},
		MajorStops: []string{"Howrah Station", "Esplanade", "Sealdah", "Airport"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger, _ := test.NewNullLogger()
	return New(config.ServerConfig{Addr: "127.0.0.1:0", CacheTTL: time.Minute, AllowedOrigins: []string{"*"}}, testCatalog(), logger)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestServer_Health(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}

	var got healthResponse
	decode(t, rec, &got)
	if got.Status != "ok" || got.Routes != 2 || got.MajorStops != 4 {
		t.Errorf("got %+v", got)
	}
}

func TestServer_Search(t *testing.T) {
	h := newTestServer(t).Handler()

	t.Run("direct", func(t *testing.T) {
		rec := get(t, h, "/api/search?from=howrah&to=sealdah")
		if rec.Code != http.StatusOK {
			t.Fatalf("got status %d", rec.Code)
		}

		var got render.Response
		decode(t, rec, &got)
		if got.Kind != "direct" || len(got.Direct) != 1 || got.Direct[0].Number != "S12" {
			t.Errorf("got %+v", got)
		}
		if got.Query.Source != "howrah" {
			t.Errorf("got query %+v", got.Query)
		}
	})

	t.Run("indirect", func(t *testing.T) {
		rec := get(t, h, "/api/search?from=Howrah&to=Airport")

		var got render.Response
		decode(t, rec, &got)
		if got.Kind != "indirect" || len(got.Indirect) != 1 {
			t.Fatalf("got %+v", got)
		}
		if got.Indirect[0].TransferPoint != "Sealdah" || got.Indirect[0].TotalStops != 4 {
			t.Errorf("got %+v", got.Indirect[0])
		}
	})

	t.Run("cached by case-insensitive query", func(t *testing.T) {
		first := get(t, h, "/api/search?from=Esplanade&to=Lake%20Town")
		second := get(t, h, "/api/search?from=ESPLANADE&to=lake%20town")

		if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
			t.Errorf("got X-Cache %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
		}

		var got render.Response
		decode(t, second, &got)
		if got.Query.Source != "ESPLANADE" || got.Kind != "indirect" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		var got render.Response
		decode(t, get(t, h, "/api/search?from=Howrah&to=Dum%20Dum"), &got)
		if got.Kind != "none" || got.Direct == nil || got.Indirect == nil {
			t.Errorf("got %+v", got)
		}
	})

	for _, target := range []string{"/api/search", "/api/search?from=Howrah", "/api/search?from=%20&to=Airport"} {
		t.Run("bad request "+target, func(t *testing.T) {
			if rec := get(t, h, target); rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d", rec.Code)
			}
		})
	}
}

func TestServer_Routes(t *testing.T) {
	h := newTestServer(t).Handler()

	t.Run("list", func(t *testing.T) {
		var got []catalog.Bus
		decode(t, get(t, h, "/api/routes"), &got)
		if len(got) != 2 {
			t.Errorf("got %d routes", len(got))
		}
	})

	t.Run("filter", func(t *testing.T) {
		var got []catalog.Bus
		decode(t, get(t, h, "/api/routes?q=lake"), &got)
		if len(got) != 1 || got[0].Number != "AC20" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("filter without matches", func(t *testing.T) {
		rec := get(t, h, "/api/routes?q=zzz")
		if rec.Body.String() != "[]\n" {
			t.Errorf("got %q", rec.Body.String())
		}
	})

	t.Run("one", func(t *testing.T) {
		var got catalog.Bus
		decode(t, get(t, h, "/api/routes/AC20"), &got)
		if got.Name != "Sealdah - Airport" || len(got.Stops) != 3 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if rec := get(t, h, "/api/routes/999"); rec.Code != http.StatusNotFound {
			t.Errorf("got status %d", rec.Code)
		}
	})
}

func TestServer_Suggest(t *testing.T) {
	h := newTestServer(t).Handler()

	var got []string
	decode(t, get(t, h, "/api/stops/suggest?q=a&limit=2"), &got)
	if len(got) != 2 || got[0] != "Howrah Station" || got[1] != "Esplanade" {
		t.Errorf("got %v", got)
	}

	if rec := get(t, h, "/api/stops/suggest?q=a&limit=x"); rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d", rec.Code)
	}

	rec := get(t, h, "/api/stops/suggest")
	if rec.Body.String() != "[]\n" {
		t.Errorf("got %q", rec.Body.String())
	}
}

func TestServer_OnlyGet(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search?from=a&to=b", nil))

	if rec.Code == http.StatusOK {
		t.Errorf("got status %d", rec.Code)
	}
}

func TestServer_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("got Access-Control-Allow-Origin %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d", rec.Code)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Error("panic should be logged")
	}
}

func TestRecoveryMiddleware_HeadersWritten(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("got status %d", rec.Code)
	}
	if rec.Body.String() != "partial" {
		t.Errorf("got body %q", rec.Body.String())
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Error("panic should be logged")
	}
}

func TestStatusRecorder(t *testing.T) {
	t.Run("write without header", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
		_, _ = rec.Write([]byte("ok"))
		if !rec.wroteHeader || rec.status != http.StatusOK {
			t.Errorf("got wroteHeader=%v status=%d", rec.wroteHeader, rec.status)
		}
	})

	t.Run("first status wins", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
		rec.WriteHeader(http.StatusNotFound)
		rec.WriteHeader(http.StatusInternalServerError)
		if rec.status != http.StatusNotFound {
			t.Errorf("got status %d", rec.status)
		}
	})
}

func TestServer_ListenAndShutdown(t *testing.T) {
	defer leaktest.Check(t)()

	logger, _ := test.NewNullLogger()
	s := New(config.ServerConfig{Addr: "127.0.0.1:0"}, testCatalog(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	if err := <-errCh; err != nil {
		t.Errorf("ListenAndServe returned %v", err)
	}
}
