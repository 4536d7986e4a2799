package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/vibast-solutions/ms-go-tablelocks/app/controller"
	"github.com/vibast-solutions/ms-go-tablelocks/app/metrics"
	"github.com/vibast-solutions/ms-go-tablelocks/app/service"
	"github.com/vibast-solutions/ms-go-tablelocks/app/store"

	"github.com/labstack/echo/v4"
)

func newTestServer() *echo.Echo {
	logger, _ := logrustest.NewNullLogger()
	tables := service.NewTableLockService(store.NewLockStore(store.NewSystemClock()), logger, metrics.Noop{})
	tableController := controller.NewTableController(tables)
	return setupHTTPServer(tableController, logger, "test-instance", time.Now())
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal %s %s response: %v", method, path, err)
	}
	return rec.Code, decoded
}

func TestServeLockScenario(t *testing.T) {
	e := newTestServer()

	code, body := doJSON(t, e, http.MethodPost, "/api/tables/lock", `{"tableId":"t1","userId":"u1","duration":300}`)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected 200 success, got %d %v", code, body)
	}

	code, _ = doJSON(t, e, http.MethodPost, "/api/tables/lock", `{"tableId":"t1","userId":"u2","duration":60}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}

	code, _ = doJSON(t, e, http.MethodPost, "/api/tables/unlock", `{"tableId":"t1","userId":"u2"}`)
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}

	code, body = doJSON(t, e, http.MethodGet, "/api/tables/locks", "")
	if code != http.StatusOK || body["totalActiveLocks"] != float64(1) {
		t.Fatalf("expected 1 active lock, got %d %v", code, body)
	}

	code, _ = doJSON(t, e, http.MethodPost, "/api/tables/unlock", `{"tableId":"t1","userId":"u1"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	code, body = doJSON(t, e, http.MethodGet, "/api/tables/t1/status", "")
	if code != http.StatusOK || body["isLocked"] != false {
		t.Fatalf("expected unlocked status, got %d %v", code, body)
	}
}

func TestServeHealthRoute(t *testing.T) {
	e := newTestServer()

	code, body := doJSON(t, e, http.MethodGet, "/health", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != "OK" {
		t.Fatalf("expected status OK, got %v", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
		t.Fatalf("invalid timestamp: %v", err)
	}
	if _, ok := body["uptime"].(float64); !ok {
		t.Fatalf("expected numeric uptime, got %v", body["uptime"])
	}
}

func TestServeRootRoute(t *testing.T) {
	e := newTestServer()

	code, body := doJSON(t, e, http.MethodGet, "/", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["service"] != serviceName {
		t.Fatalf("expected service %s, got %v", serviceName, body["service"])
	}
	endpoints, ok := body["endpoints"].(map[string]any)
	if !ok || len(endpoints) == 0 {
		t.Fatalf("expected endpoint list, got %v", body["endpoints"])
	}
}

func TestServeUnknownRoute(t *testing.T) {
	e := newTestServer()

	code, body := doJSON(t, e, http.MethodGet, "/api/unknown", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["success"] != false || body["message"] != "Endpoint not found." {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestServeWrongMethod(t *testing.T) {
	e := newTestServer()

	code, body := doJSON(t, e, http.MethodGet, "/api/tables/lock", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["message"] != "Endpoint not found." {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestServeMetricsRoute(t *testing.T) {
	e := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
