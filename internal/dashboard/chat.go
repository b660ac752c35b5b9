package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docqa/internal/qa"
	"github.com/ziadkadry99/docqa/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// askRequest is the incoming WebSocket message format.
type askRequest struct {
	Type      string `json:"type"` // "ask"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// sourceView is one retrieved segment as shown under an answer.
type sourceView struct {
	Label   string  `json:"label"`
	Preview string  `json:"preview"`
	Score   float32 `json:"score"`
}

// askResponse is the outgoing WebSocket message format.
type askResponse struct {
	Type      string       `json:"type"` // "answer" or "error"
	SessionID string       `json:"session_id"`
	State     string       `json:"state,omitempty"`
	Content   string       `json:"content"`
	HTML      string       `json:"html,omitempty"`
	Sources   []sourceView `json:"sources,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req askRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "", "invalid message format")
			continue
		}

		switch req.Type {
		case "ask":
			d.handleAsk(conn, r, req)
		default:
			d.sendError(conn, req.SessionID, "", "unknown message type: "+req.Type)
		}
	}
}

func (d *Dashboard) handleAsk(conn *websocket.Conn, r *http.Request, req askRequest) {
	c := d.lookup(req.SessionID)
	if c == nil {
		d.sendError(conn, req.SessionID, stateNoDocuments, session.ErrNoDocuments.Error())
		return
	}

	res, err := c.sess.Ask(r.Context(), req.Content)
	switch {
	case errors.Is(err, session.ErrNoDocuments):
		d.sendError(conn, req.SessionID, stateNoDocuments, err.Error())
		return
	case err != nil:
		d.logger.Warn("answering question", zap.String("session_id", req.SessionID), zap.Error(err))
		d.sendError(conn, req.SessionID, stateAskErr, err.Error())
		return
	}

	html, err := renderMarkdown(res.Answer)
	if err != nil {
		d.logger.Warn("rendering answer", zap.Error(err))
	}

	sources := make([]sourceView, len(res.Sources))
	for i, m := range res.Sources {
		sources[i] = sourceView{
			Label:   qa.SourceLabel(i+1, m.Segment),
			Preview: qa.Preview(m.Segment.Text, qa.PreviewLength),
			Score:   m.Score,
		}
	}

	d.sendResponse(conn, askResponse{
		Type:      "answer",
		SessionID: req.SessionID,
		State:     stateReady,
		Content:   res.Answer,
		HTML:      html,
		Sources:   sources,
	})
}

func (d *Dashboard) sendResponse(conn *websocket.Conn, resp askResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write", zap.Error(err))
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, state, message string) {
	resp := askResponse{
		Type:      "error",
		SessionID: sessionID,
		State:     state,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write error", zap.Error(err))
	}
}
