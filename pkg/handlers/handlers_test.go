package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"

	"Stu-Music-Go/pkg/agent"
	"Stu-Music-Go/pkg/db"
	"Stu-Music-Go/pkg/enrich"
	"Stu-Music-Go/pkg/handlers"
	"Stu-Music-Go/pkg/metrics"
	"Stu-Music-Go/pkg/mindmap"
	"Stu-Music-Go/pkg/music"
	"Stu-Music-Go/pkg/spotify"
)

type fakeCatalog struct {
	err   error
	cover string
	query string
}

func (f *fakeCatalog) Search(_ context.Context, q string, _ music.SearchType, _ int) (*music.SearchResults, error) {
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	return &music.SearchResults{Tracks: []music.Track{{ID: "1", Name: "Song", Artist: "A"}}}, nil
}

func (f *fakeCatalog) AlbumCover(context.Context, string, string) (string, error) {
	if f.cover == "" {
		return "", spotify.ErrNoCover
	}
	return f.cover, nil
}

type fakeAuth struct {
	state       string
	exchangeErr error
	device      string
	token       string
}

func (f *fakeAuth) AuthURL(state string) string {
	f.state = state
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (f *fakeAuth) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return (&oauth2.Token{AccessToken: "at-" + code, TokenType: "Bearer"}).WithExtra(map[string]any{"expires_in": float64(3600)}), nil
}

func (f *fakeAuth) TransferPlayback(_ context.Context, tok *oauth2.Token, deviceID string, _ bool) error {
	f.device, f.token = deviceID, tok.AccessToken
	return nil
}

type fakeAgent struct {
	err    error
	action agent.Action
	token  *oauth2.Token
}

func (f *fakeAgent) ExecuteAction(_ context.Context, a agent.Action, tok *oauth2.Token) (any, error) {
	f.action, f.token = a, tok
	if f.err != nil {
		return nil, f.err
	}
	return agent.FindMusicResult{Tracks: []music.Track{}}, nil
}

func (f *fakeAgent) RunPrompt(context.Context, string) (*agent.PromptResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &agent.PromptResult{Response: &mcp.TextContent{Text: "hello"}}, nil
}

type fakeEnricher struct{}

func (fakeEnricher) Enrich(_ context.Context, ids []string) ([]enrich.Result, error) {
	out := make([]enrich.Result, len(ids))
	for i, id := range ids {
		out[i] = enrich.Result{TrackID: id}
	}
	return out, nil
}

type fakeHistory struct{}

func (fakeHistory) RecentSearches(context.Context, int) ([]db.Search, error) {
	return []db.Search{{ID: 1, Query: "jazz", Queries: []string{"a"}}}, nil
}

func (fakeHistory) TopQueriesSince(context.Context, time.Time, int) ([]db.QueryCount, error) {
	return []db.QueryCount{{Query: "jazz", Count: 3}}, nil
}

type testApp struct {
	handler http.Handler
	catalog *fakeCatalog
	auth    *fakeAuth
	agent   *fakeAgent
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	mm, err := mindmap.New()
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	ta := &testApp{catalog: &fakeCatalog{}, auth: &fakeAuth{}, agent: &fakeAgent{}}
	app := &handlers.Application{
		Spotify:  ta.catalog,
		Auth:     ta.auth,
		Agent:    ta.agent,
		Enricher: fakeEnricher{},
		History:  fakeHistory{},
		MindMap:  mm,
		SignKey:  []byte("test-key"),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}
	ta.handler = app.Routes()
	return ta
}

func (ta *testApp) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("body is not a JSON object: %q", rr.Body.String())
	}
	return m
}

// TestMissingFieldsReturn400 checks every endpoint that requires a field.
func TestMissingFieldsReturn400(t *testing.T) {
	ta := newTestApp(t)
	tests := []struct {
		method, path, body, want string
	}{
		{"POST", "/api/auth/token", `{}`, "Authorization code is required"},
		{"POST", "/api/music", `{}`, "Query is required"},
		{"POST", "/api/music", `{"query":"  "}`, "Query is required"},
		{"POST", "/api/agent", `{"params":{}}`, "Missing 'action' field in request"},
		{"POST", "/api/agent", `{"action":"findMusic"}`, "Missing 'params' field in request"},
		{"POST", "/api/stu", `{}`, "Prompt is required."},
		{"GET", "/api/album-cover?song=x", ``, "song and artist are required"},
		{"PATCH", "/api/mindmap", `{"song_name":"Teardrop"}`, "song_name, artist and coordinates2 are required"},
		{"POST", "/api/enrich", `{"tracks":[]}`, "tracks is required"},
	}
	for _, tt := range tests {
		rr := ta.do(tt.method, tt.path, tt.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status %d", tt.method, tt.path, rr.Code)
			continue
		}
		if got := decodeBody(t, rr)["error"]; got != tt.want {
			t.Errorf("%s %s: error = %v, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestMusicSearch(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("POST", "/api/music", `{"query":"radiohead","extra":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	if ta.catalog.query != "radiohead" {
		t.Errorf("query = %q", ta.catalog.query)
	}
	var res music.SearchResults
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil || len(res.Tracks) != 1 {
		t.Fatalf("unexpected body %s", rr.Body)
	}

	ta.catalog.err = errors.New("spotify down")
	rr = ta.do("POST", "/api/music", `{"query":"radiohead"}`)
	if rr.Code != http.StatusInternalServerError || decodeBody(t, rr)["error"] != "Failed to search for music" {
		t.Fatalf("unexpected failure response %d %s", rr.Code, rr.Body)
	}
}

func TestTokenExchange(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("POST", "/api/auth/token", `{"code":"abc"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	body := decodeBody(t, rr)
	if body["access_token"] != "at-abc" || body["expires_in"] != float64(3600) {
		t.Errorf("unexpected token body %v", body)
	}

	ta.auth.exchangeErr = &spotify.TokenError{Status: http.StatusBadRequest, Body: []byte(`{"error":"invalid_grant"}`)}
	rr = ta.do("POST", "/api/auth/token", `{"code":"abc"}`)
	if rr.Code != http.StatusBadRequest || strings.TrimSpace(rr.Body.String()) != `{"error":"invalid_grant"}` {
		t.Errorf("upstream error not relayed: %d %s", rr.Code, rr.Body)
	}

	ta.auth.exchangeErr = errors.New("network")
	rr = ta.do("POST", "/api/auth/token", `{"code":"abc"}`)
	if rr.Code != http.StatusInternalServerError || decodeBody(t, rr)["error"] != "Failed to exchange token" {
		t.Errorf("unexpected response %d %s", rr.Code, rr.Body)
	}
}

func TestLoginStateRoundTrip(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("GET", "/login", "")
	if rr.Code != http.StatusFound || !strings.Contains(rr.Header().Get("Location"), ta.auth.state) {
		t.Fatalf("unexpected redirect %d %q", rr.Code, rr.Header().Get("Location"))
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "oauth_state" {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	cookie := cookies[0].Name + "=" + cookies[0].Value

	rr = ta.do("POST", "/api/auth/token", `{"code":"c","state":"`+ta.auth.state+`"}`, "Cookie", cookie)
	if rr.Code != http.StatusOK {
		t.Errorf("matching state rejected: %d %s", rr.Code, rr.Body)
	}
	rr = ta.do("POST", "/api/auth/token", `{"code":"c","state":"forged"}`, "Cookie", cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("forged state accepted: %d", rr.Code)
	}
}

func TestAgentAction(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("POST", "/api/agent", `{"action":"findMusic","params":{"query":"jazz"}}`, "Authorization", "Bearer user-token")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"tracks":[]}` {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body)
	}
	if ta.agent.action.Action != "findMusic" || ta.agent.token == nil || ta.agent.token.AccessToken != "user-token" {
		t.Errorf("agent called with %+v %+v", ta.agent.action, ta.agent.token)
	}

	ta.agent.err = errors.New("Unknown action: dance")
	rr = ta.do("POST", "/api/agent", `{"action":"dance","params":{}}`)
	body := decodeBody(t, rr)
	if rr.Code != http.StatusInternalServerError || body["error"] != "Agent request failed" || body["details"] != "Unknown action: dance" {
		t.Errorf("unexpected response %d %v", rr.Code, body)
	}

	ta.agent.err = agent.ErrInvalidParams
	rr = ta.do("POST", "/api/agent", `{"action":"findMusic","params":{}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid params status = %d", rr.Code)
	}
}

func TestStu(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("POST", "/api/stu", `{"prompt":"play jazz"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	resp, _ := decodeBody(t, rr)["response"].(map[string]any)
	if resp["type"] != "text" || resp["text"] != "hello" {
		t.Errorf("unexpected response %s", rr.Body)
	}
}

func TestAlbumCoverNotFound(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("GET", "/api/album-cover?song=a&artist=b", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	ta.catalog.cover = "https://i.scdn.co/image/x"
	rr = ta.do("GET", "/api/album-cover?song=a&artist=b", "")
	if rr.Code != http.StatusOK || decodeBody(t, rr)["url"] != "https://i.scdn.co/image/x" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body)
	}
}

func TestMindMapMove(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("PATCH", "/api/mindmap", `{"song_name":"Nobody","artist":"X","coordinates2":{"x":1,"y":1,"z":1}}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown song status = %d", rr.Code)
	}
	rr = ta.do("PATCH", "/api/mindmap", `{"song_name":"Teardrop","artist":"Massive Attack","coordinates2":{"x":1,"y":2,"z":3}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	rr = ta.do("GET", "/api/mindmap", "")
	var songs []mindmap.SongData
	if err := json.Unmarshal(rr.Body.Bytes(), &songs); err != nil {
		t.Fatal(err)
	}
	for _, s := range songs {
		if s.SongName == "Teardrop" && s.Coordinates2 != (mindmap.Coordinates{X: 1, Y: 2, Z: 3}) {
			t.Errorf("move not applied: %+v", s)
		}
	}
}

func TestTransferPlayback(t *testing.T) {
	ta := newTestApp(t)
	if rr := ta.do("POST", "/api/player/transfer", `{"device_id":"d1"}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d", rr.Code)
	}
	if rr := ta.do("POST", "/api/player/transfer", `{}`, "Authorization", "Bearer t"); rr.Code != http.StatusBadRequest {
		t.Errorf("missing device status = %d", rr.Code)
	}
	rr := ta.do("POST", "/api/player/transfer", `{"device_id":"d1","play":true}`, "Authorization", "Bearer t")
	if rr.Code != http.StatusNoContent || ta.auth.device != "d1" || ta.auth.token != "t" {
		t.Errorf("unexpected transfer %d %q %q", rr.Code, ta.auth.device, ta.auth.token)
	}
}

func TestEnrichAndHistory(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("POST", "/api/enrich", `{"tracks":["a","b"]}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"track_id":"b"`) {
		t.Errorf("unexpected enrich response %d %s", rr.Code, rr.Body)
	}
	rr = ta.do("GET", "/api/history?limit=5", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"query":"jazz"`) {
		t.Errorf("unexpected history response %d %s", rr.Code, rr.Body)
	}
	rr = ta.do("GET", "/api/history/top?days=30", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"count":3`) {
		t.Errorf("unexpected top response %d %s", rr.Code, rr.Body)
	}
}

func TestMiddleware(t *testing.T) {
	ta := newTestApp(t)
	rr := ta.do("GET", "/health", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health %d %s", rr.Code, rr.Body)
	}
	if rr.Header().Get(handlers.RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	const id = "8f14e45f-ceea-467f-a0e6-0e1b3a9c4f7d"
	rr = ta.do("GET", "/health", "", handlers.RequestIDHeader, id)
	if rr.Header().Get(handlers.RequestIDHeader) != id {
		t.Errorf("client request id not kept: %q", rr.Header().Get(handlers.RequestIDHeader))
	}

	rr = ta.do("GET", "/metrics", "")
	if !strings.Contains(rr.Body.String(), `http_requests_total{code="200",method="GET",route="GET /health"} 2`) {
		t.Errorf("request metric missing:\n%s", rr.Body)
	}
}
