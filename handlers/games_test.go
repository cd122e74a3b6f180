package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamecatalog/db"
	"gamecatalog/models"
	"gamecatalog/repository"
	"gamecatalog/service"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := service.NewGameService(repository.NewGameRepository(gdb), nil)
	health := NewHealthHandler(PingFunc(func(ctx context.Context) error { return db.Ping(ctx, gdb) }), nil)
	return NewRouter(svc, health, RouterOptions{AllowOrigins: []string{"http://localhost:3000"}})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body=%s", err, rr.Body.String())
	}
	return env
}

func decodeGame(t *testing.T, env envelope) models.Game {
	t.Helper()
	var g models.Game
	if err := json.Unmarshal(env.Data, &g); err != nil {
		t.Fatalf("decode game: %v; data=%s", err, env.Data)
	}
	return g
}

func chronoBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Chrono",
		"description": "d",
		"releaseDate": "2024",
		"oldPrice":    100,
		"discount":    20,
	}
}

func TestGameLifecycle(t *testing.T) {
	r := setupRouter(t)

	rr := do(t, r, http.MethodPost, "/api/games", chronoBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d; body=%s", rr.Code, rr.Body.String())
	}
	env := decode(t, rr)
	if env.Status != http.StatusCreated {
		t.Fatalf("envelope status %d", env.Status)
	}
	created := decodeGame(t, env)
	if created.ID == 0 || created.CurrentPrice != 80 {
		t.Fatalf("unexpected created game %+v", created)
	}

	rr = do(t, r, http.MethodPost, "/api/games", chronoBody())
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rr.Code)
	}
	if env := decode(t, rr); env.Status != http.StatusConflict || string(env.Data) != "null" {
		t.Fatalf("unexpected conflict envelope %+v", env)
	}

	path := fmt.Sprintf("/api/games/%d", created.ID)
	rr = do(t, r, http.MethodGet, path, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	got := decodeGame(t, decode(t, rr))
	if got.Name != "Chrono" || got.CurrentPrice != 80 || got.ID != created.ID {
		t.Fatalf("payload mismatch %+v", got)
	}

	bad := chronoBody()
	bad["discount"] = 150
	rr = do(t, r, http.MethodPut, path, bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("update with discount above price: expected 400, got %d", rr.Code)
	}
	rr = do(t, r, http.MethodGet, path, nil)
	if after := decodeGame(t, decode(t, rr)); after.CurrentPrice != 80 {
		t.Fatalf("rejected update changed record: %+v", after)
	}
}

func TestListEmptyCatalogIsNoContent(t *testing.T) {
	r := setupRouter(t)

	rr := do(t, r, http.MethodGet, "/api/games", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("204 must not carry a body on the wire, got %q", rr.Body.String())
	}
}

func TestListReturnsGames(t *testing.T) {
	r := setupRouter(t)
	for _, name := range []string{"A", "B"} {
		body := chronoBody()
		body["name"] = name
		if rr := do(t, r, http.MethodPost, "/api/games", body); rr.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", name, rr.Code)
		}
	}

	rr := do(t, r, http.MethodGet, "/api/games", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var games []models.Game
	if err := json.Unmarshal(decode(t, rr).Data, &games); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
}

func TestGetMissingGame(t *testing.T) {
	r := setupRouter(t)

	rr := do(t, r, http.MethodGet, "/api/games/99", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	env := decode(t, rr)
	if env.Status != http.StatusNotFound || string(env.Data) != "null" || env.Message != msgGameNotFound {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	r := setupRouter(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := do(t, r, method, "/api/games/abc", chronoBody())
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", method, rr.Code)
		}
	}
}

func TestCreateValidationErrors(t *testing.T) {
	r := setupRouter(t)

	body := chronoBody()
	delete(body, "name")
	body["description"] = "   "
	rr := do(t, r, http.MethodPost, "/api/games", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var fields map[string]string
	if err := json.Unmarshal(decode(t, rr).Data, &fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if fields["name"] == "" || fields["description"] == "" {
		t.Fatalf("expected name and description errors, got %v", fields)
	}

	noPrice := chronoBody()
	delete(noPrice, "oldPrice")
	if rr := do(t, r, http.MethodPost, "/api/games", noPrice); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing old price: expected 400, got %d", rr.Code)
	}

	if rr := do(t, r, http.MethodPost, "/api/games", `{"name":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", rr.Code)
	}

	if rr := do(t, r, http.MethodGet, "/api/games", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("rejected creates persisted games: list returned %d", rr.Code)
	}
}

func TestCreateIgnoresClientCurrentPrice(t *testing.T) {
	r := setupRouter(t)
	body := chronoBody()
	body["currentPrice"] = 1
	body["id"] = 500

	rr := do(t, r, http.MethodPost, "/api/games", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	g := decodeGame(t, decode(t, rr))
	if g.CurrentPrice != 80 || g.ID == 500 {
		t.Fatalf("client controlled derived fields: %+v", g)
	}
}

func TestUpdatePreservesID(t *testing.T) {
	r := setupRouter(t)
	created := decodeGame(t, decode(t, do(t, r, http.MethodPost, "/api/games", chronoBody())))

	body := chronoBody()
	body["id"] = created.ID + 100
	body["discount"] = nil
	body["platform"] = "PC"
	rr := do(t, r, http.MethodPut, fmt.Sprintf("/api/games/%d", created.ID), body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	updated := decodeGame(t, decode(t, rr))
	if updated.ID != created.ID {
		t.Fatalf("id changed to %d", updated.ID)
	}
	if updated.CurrentPrice != 100 || updated.Platform != "PC" {
		t.Fatalf("unexpected update %+v", updated)
	}

	rr = do(t, r, http.MethodGet, fmt.Sprintf("/api/games/%d", created.ID+100), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("update created a record under the body id")
	}
}

func TestUpdateMissingGame(t *testing.T) {
	r := setupRouter(t)

	rr := do(t, r, http.MethodPut, "/api/games/7", chronoBody())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := do(t, r, http.MethodGet, "/api/games", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("update of missing game created a record")
	}
}

// The envelope says 204 while the HTTP status is 200. Clients depend on it.
func TestDeleteReportsNoContentInsideOKEnvelope(t *testing.T) {
	r := setupRouter(t)
	created := decodeGame(t, decode(t, do(t, r, http.MethodPost, "/api/games", chronoBody())))
	path := fmt.Sprintf("/api/games/%d", created.ID)

	rr := do(t, r, http.MethodDelete, path, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", rr.Code)
	}
	env := decode(t, rr)
	if env.Status != http.StatusNoContent || string(env.Data) != "null" {
		t.Fatalf("expected envelope status 204 with null data, got %+v", env)
	}

	if rr := do(t, r, http.MethodGet, path, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, r, http.MethodDelete, path, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

type brokenService struct{ service.GameService }

func (brokenService) ListGames(context.Context) ([]models.Game, error) {
	return nil, errors.New("connection reset")
}

func TestStoreFailureIsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := NewHealthHandler(PingFunc(func(context.Context) error { return nil }), nil)
	r := NewRouter(brokenService{}, health, RouterOptions{})

	rr := do(t, r, http.MethodGet, "/api/games", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if env := decode(t, rr); env.Status != http.StatusInternalServerError || string(env.Data) != "null" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestNegativeDiscountIsRejectedNotNormalized(t *testing.T) {
	r := setupRouter(t)

	body := chronoBody()
	body["discount"] = -5
	rr := do(t, r, http.MethodPost, "/api/games", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var fields map[string]string
	if err := json.Unmarshal(decode(t, rr).Data, &fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if fields["discount"] == "" {
		t.Fatalf("expected a discount error, got %v", fields)
	}

	created := decodeGame(t, decode(t, do(t, r, http.MethodPost, "/api/games", chronoBody())))
	rr = do(t, r, http.MethodPut, fmt.Sprintf("/api/games/%d", created.ID), body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("update: expected 400, got %d", rr.Code)
	}
}
