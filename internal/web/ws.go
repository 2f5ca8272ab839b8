package web

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jobpilot/jobpilot/internal/bus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsMaxMessage = 2 << 20
)

// Frame types exchanged over the websocket.
const (
	FrameMessage  = "message"
	FrameResume   = "resume"
	FrameProgress = "progress"
	FrameReply    = "reply"
	FrameError    = "error"
)

// Frame is one websocket message in either direction.
type Frame struct {
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Artifacts []ArtifactInfo `json:"artifacts,omitempty"`
}

// serveWS handles GET /api/sessions/:id/ws. Each inbound frame runs one
// turn; progress frames precede the reply.
func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("web: websocket upgrade", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	id := c.GetString(ctxSessionID)
	ctx := c.Request.Context()

	var mu sync.Mutex
	write := func(f Frame) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(f)
	}

	for {
		var in Frame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("web: websocket read", "session", id, "err", err)
			}
			return
		}

		content := strings.TrimSpace(in.Content)
		msg := bus.NewInboundMessage(bus.ChannelWeb, senderID, id, content)
		switch in.Type {
		case FrameMessage:
		case FrameResume:
			msg = bus.NewInboundMessage(bus.ChannelWeb, senderID, id, "")
			msg.SetResume(content)
		default:
			if err := write(Frame{Type: FrameError, Content: "unknown frame type " + in.Type}); err != nil {
				return
			}
			continue
		}
		if content == "" {
			if err := write(Frame{Type: FrameError, Content: "content is required"}); err != nil {
				return
			}
			continue
		}

		out := s.agent.ProcessDirect(ctx, msg, func(p string) {
			_ = write(Frame{Type: FrameProgress, Content: p})
		})
		if err := write(Frame{Type: FrameReply, Content: out.Content(), Artifacts: artifactInfos(id, out.Attachments())}); err != nil {
			return
		}
	}
}
