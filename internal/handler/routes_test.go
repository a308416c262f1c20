package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/catalog"
	"github.com/kmoran-dev/soundshelf/internal/handler"
	"github.com/kmoran-dev/soundshelf/internal/repository/sqlite"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

const testJWTSecret = "test-secret-0123456789abcdef0123456789"

type testServer struct {
	*httptest.Server
}

// newTestServer wires the full route table against a real SQLite database
// and a local fake of the catalog upstream.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimiter(t, service.NewThrottle(1000, 1000))
}

func newTestServerWithLimiter(t *testing.T, loginLimiter *service.Throttle) *testServer {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	fakeCatalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultCount": 1, "results": [
			{"trackId": 1, "trackName": "Song", "artistName": "Artist", "previewUrl": "https://cdn/p.m4a"}
		]}`)
	}))
	t.Cleanup(fakeCatalog.Close)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.RouteConfig{
		Auth:         service.NewAuthService(db.Users(), testJWTSecret, time.Hour, 4),
		Playlists:    service.NewPlaylistService(db.Playlists(), db.Users()),
		Favorites:    service.NewFavoritesService(db.Favorites()),
		History:      service.NewHistoryService(db.History()),
		Catalog:      catalog.NewClient(fakeCatalog.URL, 2*time.Second, 1000),
		LoginLimiter: loginLimiter,
		CookieSecure: false,
		CookieMaxAge: time.Hour,
	})

	srv := httptest.NewServer(handler.SecurityHeaders(handler.RequestID(mux)))
	t.Cleanup(srv.Close)
	return &testServer{srv}
}

// newSession returns an HTTP client with its own cookie jar, so each caller
// in a test holds an independent login session.
func newSession(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func (s *testServer) do(t *testing.T, client *http.Client, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, data, err)
		}
	}
	return resp, decoded
}

func (s *testServer) register(t *testing.T, client *http.Client, name, email string) {
	t.Helper()

	resp, _ := s.do(t, client, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "password1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
}

func (s *testServer) createPlaylist(t *testing.T, client *http.Client, name string, isPublic bool) map[string]any {
	t.Helper()

	resp, body := s.do(t, client, http.MethodPost, "/api/playlists", map[string]any{
		"name": name, "isPublic": isPublic,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create playlist: status %d", resp.StatusCode)
	}
	return body["playlist"].(map[string]any)
}

func playlistPath(p map[string]any) string {
	return fmt.Sprintf("/api/playlists/%d", int64(p["id"].(float64)))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	session := newSession(t)

	srv.register(t, session, "Kate", "kate@example.com")

	// The register response set the auth cookie.
	resp, body := srv.do(t, session, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me after register: status %d", resp.StatusCode)
	}
	user := body["user"].(map[string]any)
	if user["email"] != "kate@example.com" {
		t.Fatalf("unexpected user %v", user)
	}

	resp, _ = srv.do(t, session, http.MethodPost, "/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, session, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, session, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "kate@example.com", "password": "password1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, session, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me after login: status %d", resp.StatusCode)
	}
}

func TestAuthStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	session := newSession(t)
	srv.register(t, session, "Kate", "kate@example.com")

	resp, _ := srv.do(t, newSession(t), http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Other", "email": "KATE@example.com", "password": "password1",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate email: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, newSession(t), http.MethodPost, "/api/auth/login", map[string]string{
		"email": "kate@example.com", "password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, newSession(t), http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Shorty", "email": "shorty@example.com", "password": "abc",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password: status %d", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServerWithLimiter(t, service.NewThrottle(0.0001, 2))
	session := newSession(t)

	creds := map[string]string{"email": "nobody@example.com", "password": "password1"}
	for i := 0; i < 2; i++ {
		resp, _ := srv.do(t, session, http.MethodPost, "/api/auth/login", creds)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status %d", i+1, resp.StatusCode)
		}
	}
	resp, _ := srv.do(t, session, http.MethodPost, "/api/auth/login", creds)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after bucket empties, got %d", resp.StatusCode)
	}
}

func TestPlaylistEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	anon := newSession(t)

	resp, _ := srv.do(t, anon, http.MethodGet, "/api/playlists", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, anon, http.MethodPost, "/api/playlists", map[string]any{"name": "X"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
}

func TestShareLinkLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := newSession(t)
	anon := newSession(t)
	srv.register(t, owner, "Owner", "owner@example.com")

	playlist := srv.createPlaylist(t, owner, "Road Trip", false)
	path := playlistPath(playlist)

	srv.do(t, owner, http.MethodPost, path+"/songs", map[string]any{
		"trackId": 1, "trackName": "Song", "artistName": "Artist",
	})

	// Private playlists are invisible to anonymous callers.
	resp, _ := srv.do(t, anon, http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("anon get private: status %d", resp.StatusCode)
	}

	// Publish mints a share token.
	resp, body := srv.do(t, owner, http.MethodPut, path+"/visibility", map[string]any{"isPublic": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish: status %d", resp.StatusCode)
	}
	token1, _ := body["playlist"].(map[string]any)["shareToken"].(string)
	if token1 == "" {
		t.Fatal("expected a share token after publishing")
	}

	// Anyone can read a public playlist, by id or by share link.
	resp, _ = srv.do(t, anon, http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anon get public: status %d", resp.StatusCode)
	}
	resp, body = srv.do(t, anon, http.MethodGet, "/api/shared/"+token1, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shared link: status %d", resp.StatusCode)
	}
	shared := body["playlist"].(map[string]any)
	if shared["ownerName"] != "Owner" {
		t.Fatalf("expected owner name in shared view, got %v", shared["ownerName"])
	}
	if _, exposed := shared["shareToken"]; exposed {
		t.Fatal("shared view must not echo the token")
	}
	if len(shared["songs"].([]any)) != 1 {
		t.Fatalf("expected 1 song in shared view, got %v", shared["songs"])
	}

	// Unpublishing kills the link permanently.
	resp, _ = srv.do(t, owner, http.MethodPut, path+"/visibility", map[string]any{"isPublic": false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unpublish: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, anon, http.MethodGet, "/api/shared/"+token1, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stale link: status %d", resp.StatusCode)
	}

	// Republishing mints a fresh token; the old link stays dead.
	resp, body = srv.do(t, owner, http.MethodPut, path+"/visibility", map[string]any{"isPublic": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("republish: status %d", resp.StatusCode)
	}
	token2, _ := body["playlist"].(map[string]any)["shareToken"].(string)
	if token2 == "" || token2 == token1 {
		t.Fatalf("expected a fresh token, got %q (was %q)", token2, token1)
	}
	resp, _ = srv.do(t, anon, http.MethodGet, "/api/shared/"+token1, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("old link after republish: status %d", resp.StatusCode)
	}
}

func TestPlaylistOwnershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	owner := newSession(t)
	other := newSession(t)
	srv.register(t, owner, "Owner", "owner@example.com")
	srv.register(t, other, "Other", "other@example.com")

	playlist := srv.createPlaylist(t, owner, "Mine", true)
	path := playlistPath(playlist)

	// Public means readable, never writable, for non-owners.
	resp, _ := srv.do(t, other, http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("other read public: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, other, http.MethodPut, path, map[string]any{"name": "Stolen"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other rename: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, other, http.MethodPut, path+"/visibility", map[string]any{"isPublic": false})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other unpublish: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, other, http.MethodDelete, path, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other delete: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, other, http.MethodPost, path+"/songs", map[string]any{
		"trackId": 1, "trackName": "Song", "artistName": "Artist",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other add song: status %d", resp.StatusCode)
	}
}

func TestPlaylistValidationStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	session := newSession(t)
	srv.register(t, session, "Kate", "kate@example.com")

	resp, _ := srv.do(t, session, http.MethodPost, "/api/playlists", map[string]any{"name": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank name: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, session, http.MethodGet, "/api/playlists/not-a-number", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", resp.StatusCode)
	}

	resp, _ = srv.do(t, session, http.MethodGet, "/api/playlists/9999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing playlist: status %d", resp.StatusCode)
	}

	playlist := srv.createPlaylist(t, session, "Dups", false)
	path := playlistPath(playlist)
	song := map[string]any{"trackId": 1, "trackName": "Song", "artistName": "Artist"}
	resp, _ = srv.do(t, session, http.MethodPost, path+"/songs", song)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add song: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, session, http.MethodPost, path+"/songs", song)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate song: status %d", resp.StatusCode)
	}
}

func TestPublicSearch(t *testing.T) {
	srv := newTestServer(t)
	owner := newSession(t)
	srv.register(t, owner, "Owner", "owner@example.com")
	srv.createPlaylist(t, owner, "Summer Jams", true)
	srv.createPlaylist(t, owner, "Secret Stash", false)

	// No auth required for public search.
	resp, body := srv.do(t, newSession(t), http.MethodGet, "/api/playlists/public/search?term=s", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	results := body["playlists"].([]any)
	if len(results) != 1 {
		t.Fatalf("expected only the public playlist, got %d results", len(results))
	}
	if results[0].(map[string]any)["name"] != "Summer Jams" {
		t.Fatalf("unexpected result %v", results[0])
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	srv := newTestServer(t)
	session := newSession(t)
	srv.register(t, session, "Kate", "kate@example.com")

	song := map[string]any{"trackId": 7, "trackName": "Fav", "artistName": "Artist"}
	resp, _ := srv.do(t, session, http.MethodPost, "/api/favorites", song)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add favorite: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, session, http.MethodPost, "/api/favorites", song)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate favorite: status %d", resp.StatusCode)
	}

	resp, body := srv.do(t, session, http.MethodGet, "/api/favorites", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list favorites: status %d", resp.StatusCode)
	}
	if len(body["favorites"].([]any)) != 1 {
		t.Fatalf("expected 1 favorite, got %v", body["favorites"])
	}

	_, body = srv.do(t, session, http.MethodGet, "/api/favorites/7", nil)
	if body["isFavorite"] != true {
		t.Fatalf("expected track 7 to be a favorite, got %v", body)
	}
	_, body = srv.do(t, session, http.MethodGet, "/api/favorites/8", nil)
	if body["isFavorite"] != false {
		t.Fatalf("expected track 8 not to be a favorite, got %v", body)
	}

	resp, _ = srv.do(t, session, http.MethodDelete, "/api/favorites/7", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove favorite: status %d", resp.StatusCode)
	}
	resp, _ = srv.do(t, session, http.MethodDelete, "/api/favorites/7", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove missing favorite: status %d", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	session := newSession(t)
	srv.register(t, session, "Kate", "kate@example.com")

	for _, id := range []int{1, 2, 1} {
		resp, _ := srv.do(t, session, http.MethodPost, "/api/history", map[string]any{
			"trackId": id, "trackName": "Song", "artistName": "Artist",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("record play: status %d", resp.StatusCode)
		}
	}

	resp, body := srv.do(t, session, http.MethodGet, "/api/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list history: status %d", resp.StatusCode)
	}
	if len(body["history"].([]any)) != 3 {
		t.Fatalf("expected 3 plays, got %v", body["history"])
	}

	resp, body = srv.do(t, session, http.MethodGet, "/api/history/recent", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recently played: status %d", resp.StatusCode)
	}
	if len(body["history"].([]any)) != 2 {
		t.Fatalf("expected 2 distinct tracks, got %v", body["history"])
	}

	resp, _ = srv.do(t, session, http.MethodDelete, "/api/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear history: status %d", resp.StatusCode)
	}
	_, body = srv.do(t, session, http.MethodGet, "/api/history", nil)
	if len(body["history"].([]any)) != 0 {
		t.Fatalf("expected empty history, got %v", body["history"])
	}
}

func TestSongSearchProxy(t *testing.T) {
	srv := newTestServer(t)
	anon := newSession(t)

	resp, body := srv.do(t, anon, http.MethodGet, "/api/songs/search?term=song", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	if len(body["songs"].([]any)) != 1 {
		t.Fatalf("expected 1 song, got %v", body["songs"])
	}

	resp, _ = srv.do(t, anon, http.MethodGet, "/api/songs/search", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing term: status %d", resp.StatusCode)
	}
}
