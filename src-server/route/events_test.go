package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"joincal/src-server/model"
	"joincal/src-server/route"
	"joincal/src-server/utils"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newServer(t *testing.T) (*utils.AppState, *httptest.Server) {
	t.Helper()
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("STATIC_WEB_CLIENT_DIR", "")

	as, err := utils.NewAppStateWithConfig(context.Background(), utils.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(route.NewMuxer(as, nil))
	t.Cleanup(srv.Close)
	return as, srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestEventsCRUD(t *testing.T) {
	as, srv := newServer(t)

	// create, a client supplied id is ignored
	resp := do(t, "POST", srv.URL+"/api/events", `{"id":"mine","title":"Standup","start":"2024-01-01T09:00","end":"2024-01-01T09:30","color":"#4285f4"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("create:", resp.Status)
	}
	created := decode[model.CalendarEvent](t, resp)
	if created.ID == "" || created.ID == "mine" {
		t.Error("id should come from the store, got", created.ID)
	}
	if created.Title != "Standup" || created.Color != "#4285f4" {
		t.Errorf("fields lost: %+v", created)
	}

	// list
	resp = do(t, "GET", srv.URL+"/api/events", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatal("list:", resp.Status)
	}
	if list := decode[[]model.CalendarEvent](t, resp); len(list) != 1 || list[0] != created {
		t.Error("unexpected list", list)
	}

	// patch
	resp = do(t, "PATCH", srv.URL+"/api/events/"+created.ID, `{"title":"Daily","id":"other"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatal("patch:", resp.Status)
	}
	resp = do(t, "GET", srv.URL+"/api/events/"+created.ID, "")
	if got := decode[model.CalendarEvent](t, resp); got.Title != "Daily" || got.Start != created.Start || got.ID != created.ID {
		t.Errorf("patch not applied: %+v", got)
	}

	// unknown ids are a no-op
	if resp := do(t, "PATCH", srv.URL+"/api/events/nonexistent", `{"title":"x"}`); resp.StatusCode != http.StatusNoContent {
		t.Error("patch unknown:", resp.Status)
	}
	if resp := do(t, "DELETE", srv.URL+"/api/events/nonexistent", ""); resp.StatusCode != http.StatusNoContent {
		t.Error("delete unknown:", resp.Status)
	}
	if len(as.Events.Events()) != 1 {
		t.Error("unknown id changed the list")
	}

	// delete
	if resp := do(t, "DELETE", srv.URL+"/api/events/"+created.ID, ""); resp.StatusCode != http.StatusNoContent {
		t.Error("delete:", resp.Status)
	}
	if resp := do(t, "GET", srv.URL+"/api/events/"+created.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Error("deleted event still found:", resp.Status)
	}

	// persisted under the configured key
	raw, ok, err := as.Storage.GetItem(context.Background(), "calendar-events")
	if err != nil || !ok || raw != "[]" {
		t.Errorf("unexpected stored value %q ok=%v err=%v", raw, ok, err)
	}
}

func TestEventsBadRequest(t *testing.T) {
	_, srv := newServer(t)

	if resp := do(t, "POST", srv.URL+"/api/events", `{not json`); resp.StatusCode != http.StatusBadRequest {
		t.Error("create:", resp.Status)
	}
	if resp := do(t, "PATCH", srv.URL+"/api/events/a", `[]`); resp.StatusCode != http.StatusBadRequest {
		t.Error("patch:", resp.Status)
	}
	if resp := do(t, "POST", srv.URL+"/api/events", `{"start":true}`); resp.StatusCode != http.StatusBadRequest {
		t.Error("bad moment:", resp.Status)
	}
}

func TestQuickAdd(t *testing.T) {
	as, srv := newServer(t)

	resp := do(t, "POST", srv.URL+"/api/events/quick", `{"text":"dentist tomorrow at 3pm","color":"red"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("quick add:", resp.Status)
	}
	created := decode[model.CalendarEvent](t, resp)
	if created.Title != "Dentist" || created.Color != "red" || created.Start.IsZero() {
		t.Errorf("unexpected event %+v", created)
	}
	if _, ok := as.Events.Get(created.ID); !ok {
		t.Error("quick-added event not stored")
	}

	if resp := do(t, "POST", srv.URL+"/api/events/quick", `{"text":"buy milk"}`); resp.StatusCode != http.StatusBadRequest {
		t.Error("no date:", resp.Status)
	}
}

func TestIcalFeed(t *testing.T) {
	as, srv := newServer(t)
	as.Events.Add(context.Background(), model.EventDraft{Title: "Standup", Start: "2024-01-01T09:00", End: "2024-01-01T09:30", Color: "blue"})

	resp := do(t, "GET", srv.URL+"/ical/events.ics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatal(resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Error("content type", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "SUMMARY:Standup") {
		t.Error("event missing from feed")
	}
}

func TestSPA(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div class=\"app-shell\"></div>"), 0o644)
	os.MkdirAll(filepath.Join(dir, "assets"), 0o755)
	os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644)

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("STATIC_WEB_CLIENT_DIR", dir)
	as, err := utils.NewAppStateWithConfig(context.Background(), utils.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(route.NewMuxer(as, nil))
	defer srv.Close()

	for path, want := range map[string]string{
		"/":              "app-shell",
		"/calendar":      "app-shell",
		"/assets":        "app-shell",
		"/assets/app.js": "console.log",
	} {
		resp := do(t, "GET", srv.URL+path, "")
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if resp.StatusCode != http.StatusOK || !strings.Contains(buf.String(), want) {
			t.Errorf("%s: %s %q", path, resp.Status, buf.String())
		}
	}

	// API routes win over the SPA fallback
	if resp := do(t, "GET", srv.URL+"/api/events", ""); resp.Header.Get("Content-Type") != "application/json" {
		t.Error("api shadowed by spa")
	}
}
