package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stash/internal/db"
	"stash/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newItemsApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// One connection so every query sees the same in-memory database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/items", ListItems(database))
	app.Post("/api/items", CreateItem(database))
	app.Delete("/api/items/:id", DeleteItem(database))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestCreateItem_Validation(t *testing.T) {
	app := newItemsApp(t)

	cases := []string{
		`{"kind":"secret","title":"x"}`,
		`{"kind":"note","title":""}`,
		`{"kind":"note","title":"x","body":"` + strings.Repeat("a", maxBodyLen+1) + `"}`,
	}
	for _, body := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/items", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %.40q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestItems_CreateListDelete(t *testing.T) {
	app := newItemsApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/items", `{"kind":"link","title":"docs","body":"https://example.com"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created models.Item
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created item: %v", err)
	}
	if created.ID == 0 || created.Kind != "link" {
		t.Errorf("unexpected created item: %+v", created)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/items", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var listing struct {
		Items []models.Item `json:"items"`
		Total int           `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 1 || len(listing.Items) != 1 {
		t.Errorf("expected one item, got %+v", listing)
	}

	resp = doJSON(t, app, http.MethodDelete, "/api/items/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 deleting item, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodDelete, "/api/items/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting missing item, got %d", resp.StatusCode)
	}
}

func TestListItems_EmptyIsArray(t *testing.T) {
	app := newItemsApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/items", "")
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(raw), `"items":[]`) {
		t.Errorf("empty listing must serialize as an array, got %s", raw)
	}
}
