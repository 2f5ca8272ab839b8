package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jobpilot/jobpilot/internal/artifact"
	"github.com/jobpilot/jobpilot/internal/bus"
)

const (
	ctxSessionID  = "sessionID"
	ctxSessionKey = "sessionKey"

	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	senderID = "web"
)

type resumeRequest struct {
	Resume string `json:"resume" binding:"required"`
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ArtifactInfo describes a document available for download.
type ArtifactInfo struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	URL      string `json:"url"`
}

// ChatResponse is the reply to a chat request.
type ChatResponse struct {
	Reply     string         `json:"reply"`
	Progress  []string       `json:"progress,omitempty"`
	Artifacts []ArtifactInfo `json:"artifacts,omitempty"`
}

func sessionKey(id string) string { return bus.RoutingKey(bus.ChannelWeb, id) }

func artifactURL(id, callID string) string {
	if callID == "" {
		return "/api/sessions/" + id + "/artifact"
	}
	return "/api/sessions/" + id + "/artifacts/" + url.PathEscape(callID)
}

// createSession handles POST /api/sessions.
func (s *Server) createSession(c *gin.Context) {
	id := uuid.NewString()
	sess := s.sessions.GetOrCreate(sessionKey(id))
	if err := s.sessions.Save(sess); err != nil {
		slog.Error("web: create session", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// requireSession rejects malformed or unknown session ids.
func (s *Server) requireSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	key := sessionKey(id)
	if !s.sessions.Exists(key) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("session %s not found", id)})
		return
	}
	c.Set(ctxSessionID, id)
	c.Set(ctxSessionKey, key)
	c.Next()
}

// setResume handles PUT /api/sessions/:id/resume.
func (s *Server) setResume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Resume) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume text is required"})
		return
	}
	msg := bus.NewInboundMessage(bus.ChannelWeb, senderID, c.GetString(ctxSessionID), "")
	msg.SetResume(strings.TrimSpace(req.Resume))
	out := s.agent.ProcessDirect(c.Request.Context(), msg, nil)
	c.JSON(http.StatusOK, ChatResponse{Reply: out.Content()})
}

// chat handles POST /api/sessions/:id/chat.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	id := c.GetString(ctxSessionID)
	var progress []string
	msg := bus.NewInboundMessage(bus.ChannelWeb, senderID, id, req.Message)
	out := s.agent.ProcessDirect(c.Request.Context(), msg, func(p string) {
		progress = append(progress, p)
	})
	c.JSON(http.StatusOK, ChatResponse{
		Reply:     out.Content(),
		Progress:  progress,
		Artifacts: artifactInfos(id, out.Attachments()),
	})
}

// downloadArtifact handles GET /api/sessions/:id/artifact, serving the most
// recent document of this session.
func (s *Server) downloadArtifact(c *gin.Context) {
	a, ok := s.artifacts.Last(c.GetString(ctxSessionKey))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no document has been generated for this session"})
		return
	}
	sendArtifact(c, a)
}

// downloadCallArtifact handles GET /api/sessions/:id/artifacts/:callID.
func (s *Server) downloadCallArtifact(c *gin.Context) {
	callID := c.Param("callID")
	a, ok := s.artifacts.Get(c.GetString(ctxSessionKey), callID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("document %s not found in this session", callID)})
		return
	}
	sendArtifact(c, a)
}

func sendArtifact(c *gin.Context, a *artifact.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	c.Data(http.StatusOK, docxMIME, a.Data)
}

func artifactInfos(id string, atts []bus.Attachment) []ArtifactInfo {
	var infos []ArtifactInfo
	for _, a := range atts {
		infos = append(infos, ArtifactInfo{ID: a.ID, Filename: a.Filename, Size: len(a.Data), URL: artifactURL(id, a.ID)})
	}
	return infos
}
