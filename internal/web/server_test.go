package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jobpilot/jobpilot/internal/artifact"
	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/gateway"
	"github.com/jobpilot/jobpilot/internal/session"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAgent struct {
	mu  sync.Mutex
	got []bus.InboundMessage

	// docs, when set, are stored and attached the way the agent loop does.
	store *artifact.Store
	docs  []*artifact.Artifact
}

func (f *fakeAgent) ProcessDirect(_ context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage {
	f.mu.Lock()
	f.got = append(f.got, msg)
	f.mu.Unlock()
	if msg.Resume() != "" {
		return bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), "Resume received.")
	}
	if onProgress != nil {
		onProgress("Thinking... (Calling tailor_resume)")
	}
	out := bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), "Tailored for "+msg.Content())
	if len(f.docs) == 0 {
		out.AddAttachment(bus.Attachment{Filename: "tailored_resume.docx", Data: []byte("PK")})
		return out
	}
	for _, d := range f.docs {
		f.store.Put(msg.SessionKey(), d)
		out.AddAttachment(bus.Attachment{ID: d.CallID, Filename: d.Filename, Data: d.Data})
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *fakeAgent, *artifact.Store) {
	t.Helper()
	sessions, err := session.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := artifact.NewStore()
	agent := &fakeAgent{store: store}
	cfg := gateway.DefaultWebConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	return New(cfg, agent, sessions, store), agent, store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var resp struct{ ID string }
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.ID == "" {
		t.Fatalf("create body = %s", w.Body)
	}
	return resp.ID
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("healthz = %d %s", w.Code, w.Body)
	}
}

func TestChat_Flow(t *testing.T) {
	s, agent, _ := newTestServer(t)
	id := createSession(t, s)

	w := do(t, s, http.MethodPut, "/api/sessions/"+id+"/resume", map[string]string{"resume": "Jane Doe"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Resume received.") {
		t.Fatalf("resume = %d %s", w.Code, w.Body)
	}

	w = do(t, s, http.MethodPost, "/api/sessions/"+id+"/chat", map[string]string{"message": "the Acme role"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat = %d %s", w.Code, w.Body)
	}
	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reply != "Tailored for the Acme role" || len(resp.Progress) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Artifacts) != 1 || resp.Artifacts[0].URL != "/api/sessions/"+id+"/artifact" || resp.Artifacts[0].Size != 2 {
		t.Errorf("artifacts = %+v", resp.Artifacts)
	}

	if len(agent.got) != 2 {
		t.Fatalf("agent saw %d messages", len(agent.got))
	}
	if agent.got[0].SessionKey() != "web:"+id || agent.got[0].Resume() != "Jane Doe" {
		t.Errorf("resume message = %+v", agent.got[0])
	}
}

func TestChat_Validation(t *testing.T) {
	s, _, _ := newTestServer(t)
	id := createSession(t, s)

	if w := do(t, s, http.MethodPost, "/api/sessions/not-a-uuid/chat", map[string]string{"message": "hi"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/sessions/6f1c1f5e-0000-4000-8000-000000000000/chat", map[string]string{"message": "hi"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/sessions/"+id+"/chat", map[string]string{"message": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty message = %d", w.Code)
	}
	if w := do(t, s, http.MethodPut, "/api/sessions/"+id+"/resume", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty resume = %d", w.Code)
	}
}

func TestArtifact_ScopedToSession(t *testing.T) {
	s, _, store := newTestServer(t)
	mine := createSession(t, s)
	other := createSession(t, s)

	store.Put(sessionKey(mine), &artifact.Artifact{Filename: "cover_letter.docx", Data: []byte("PKdoc")})

	w := do(t, s, http.MethodGet, "/api/sessions/"+mine+"/artifact", nil)
	if w.Code != http.StatusOK || w.Body.String() != "PKdoc" {
		t.Fatalf("download = %d %q", w.Code, w.Body)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "cover_letter.docx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if w.Header().Get("Content-Type") != docxMIME {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	if w := do(t, s, http.MethodGet, "/api/sessions/"+other+"/artifact", nil); w.Code != http.StatusNotFound {
		t.Errorf("other session download = %d", w.Code)
	}
}

func TestArtifact_TwoDocumentsInOneTurn(t *testing.T) {
	s, agent, _ := newTestServer(t)
	id := createSession(t, s)
	agent.docs = []*artifact.Artifact{
		{CallID: "call_resume", Filename: "tailored_resume.docx", Data: []byte("PKresume")},
		{CallID: "call_letter", Filename: "cover_letter.docx", Data: []byte("PKletter")},
	}

	w := do(t, s, http.MethodPost, "/api/sessions/"+id+"/chat", map[string]string{"message": "Acme"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat = %d %s", w.Code, w.Body)
	}
	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Artifacts) != 2 {
		t.Fatalf("artifacts = %+v", resp.Artifacts)
	}
	if resp.Artifacts[0].URL == resp.Artifacts[1].URL {
		t.Fatalf("both documents share the URL %s", resp.Artifacts[0].URL)
	}

	want := map[string]string{"tailored_resume.docx": "PKresume", "cover_letter.docx": "PKletter"}
	for _, info := range resp.Artifacts {
		if info.URL != "/api/sessions/"+id+"/artifacts/"+info.ID {
			t.Errorf("url = %s", info.URL)
		}
		dl := do(t, s, http.MethodGet, info.URL, nil)
		if dl.Code != http.StatusOK || dl.Body.String() != want[info.Filename] {
			t.Errorf("download %s = %d %q", info.URL, dl.Code, dl.Body)
		}
		if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, info.Filename) {
			t.Errorf("Content-Disposition = %q", cd)
		}
	}

	other := createSession(t, s)
	if w := do(t, s, http.MethodGet, "/api/sessions/"+other+"/artifacts/call_resume", nil); w.Code != http.StatusNotFound {
		t.Errorf("other session download = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("preflight = %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin received CORS header")
	}
}

func TestWebSocket_Chat(t *testing.T) {
	s, _, _ := newTestServer(t)
	id := createSession(t, s)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Frame{Type: FrameMessage, Content: "the Acme role"}); err != nil {
		t.Fatal(err)
	}
	var progress, reply Frame
	if err := conn.ReadJSON(&progress); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if progress.Type != FrameProgress || reply.Type != FrameReply || reply.Content != "Tailored for the Acme role" {
		t.Errorf("frames = %+v %+v", progress, reply)
	}
	if len(reply.Artifacts) != 1 {
		t.Errorf("artifacts = %+v", reply.Artifacts)
	}

	if err := conn.WriteJSON(Frame{Type: "bogus", Content: "x"}); err != nil {
		t.Fatal(err)
	}
	var errFrame Frame
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatal(err)
	}
	if errFrame.Type != FrameError {
		t.Errorf("frame = %+v", errFrame)
	}
}
