package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/rewrite"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types from client.
const (
	wsMsgLoadScript = "load_script"
	wsMsgRewrite    = "rewrite"
	wsMsgApprove    = "approve"
	wsMsgEdit       = "edit"
	wsMsgReject     = "reject"
	wsMsgFinish     = "finish"
)

// WebSocket message types to client.
const (
	wsMsgScored   = "scored"
	wsMsgDecision = "decision"
	wsMsgSummary  = "summary"
	wsMsgError    = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsLoadScript is the payload for "load_script" messages.
type wsLoadScript struct {
	Script       script.Script `json:"script"`
	Topic        string        `json:"topic,omitempty"`
	LanguageMode string        `json:"language_mode,omitempty"`
}

// wsEdit is the payload for "edit" messages.
type wsEdit struct {
	Script script.Script `json:"script"`
}

// wsScoredResponse is sent after load, rewrite, or edit.
type wsScoredResponse struct {
	Script  script.Script `json:"script"`
	Result  resultJSON    `json:"result"`
	Weakest string        `json:"weakest"`
	Attempt int           `json:"attempt"`
	NoOp    bool          `json:"noop,omitempty"`
}

// wsDecisionResponse confirms a decision.
type wsDecisionResponse struct {
	Decision string `json:"decision"`
	Total    int    `json:"total"`
}

// wsSummaryResponse is sent when the session is finished.
type wsSummaryResponse struct {
	Attempts int    `json:"attempts"`
	Best     int    `json:"best"`
	Decision string `json:"decision"`
}

// reviewSession holds the state for one WebSocket review session.
type reviewSession struct {
	script   script.Script
	result   score.Result
	topic    string
	language string
	attempts int
	best     int
	decision review.Decision
	decided  bool
	loaded   bool
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &reviewSession{}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgLoadScript:
			s.handleWSLoadScript(conn, session, msg.Data)
		case wsMsgRewrite:
			s.handleWSRewrite(r.Context(), conn, session)
		case wsMsgApprove:
			handleWSDecision(conn, session, review.DecisionApproved)
		case wsMsgReject:
			handleWSDecision(conn, session, review.DecisionRejected)
		case wsMsgEdit:
			handleWSEdit(conn, session, msg.Data)
		case wsMsgFinish:
			handleWSFinish(conn, session)
		default:
			sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) handleWSLoadScript(conn *websocket.Conn, session *reviewSession, data json.RawMessage) {
	var req wsLoadScript
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid load_script data")
		return
	}

	res, err := score.Score(req.Script)
	if err != nil {
		sendWSError(conn, "scoring script: "+err.Error())
		return
	}

	*session = reviewSession{
		script:   req.Script,
		result:   res,
		topic:    req.Topic,
		language: req.LanguageMode,
		attempts: 1,
		best:     res.Total,
		loaded:   true,
	}

	sendWSMessage(conn, wsMsgScored, wsScoredResponse{
		Script:  session.script,
		Result:  toResultJSON(res),
		Weakest: res.Weakest().String(),
		Attempt: session.attempts,
	})
}

func (s *Server) handleWSRewrite(ctx context.Context, conn *websocket.Conn, session *reviewSession) {
	if !session.loaded {
		sendWSError(conn, "no script loaded")
		return
	}

	rw := rewrite.New(s.provider, session.topic, session.language)
	out, noop, err := rw.Rewrite(ctx, session.script, session.result)
	if err != nil {
		sendWSError(conn, "rewriting: "+err.Error())
		return
	}

	res, err := score.Score(out)
	if err != nil {
		sendWSError(conn, "rescoring: "+err.Error())
		return
	}

	if !noop {
		session.script = out
		session.result = res
		session.attempts++
		if res.Total > session.best {
			session.best = res.Total
		}
	}

	sendWSMessage(conn, wsMsgScored, wsScoredResponse{
		Script:  session.script,
		Result:  toResultJSON(session.result),
		Weakest: session.result.Weakest().String(),
		Attempt: session.attempts,
		NoOp:    noop,
	})
}

func handleWSEdit(conn *websocket.Conn, session *reviewSession, data json.RawMessage) {
	if !session.loaded {
		sendWSError(conn, "no script loaded")
		return
	}

	var req wsEdit
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid edit data")
		return
	}

	normalized, err := script.Normalize(req.Script)
	if err != nil {
		sendWSError(conn, "normalizing edit: "+err.Error())
		return
	}
	res, err := score.Score(normalized)
	if err != nil {
		sendWSError(conn, "scoring edit: "+err.Error())
		return
	}

	session.script = normalized
	session.result = res
	session.attempts++
	if res.Total > session.best {
		session.best = res.Total
	}

	sendWSMessage(conn, wsMsgScored, wsScoredResponse{
		Script:  session.script,
		Result:  toResultJSON(res),
		Weakest: res.Weakest().String(),
		Attempt: session.attempts,
	})
}

func handleWSDecision(conn *websocket.Conn, session *reviewSession, decision review.Decision) {
	if !session.loaded {
		sendWSError(conn, "no script loaded")
		return
	}

	session.decision = decision
	session.decided = true

	sendWSMessage(conn, wsMsgDecision, wsDecisionResponse{
		Decision: decision.String(),
		Total:    session.result.Total,
	})
}

func handleWSFinish(conn *websocket.Conn, session *reviewSession) {
	if !session.loaded {
		sendWSError(conn, "no script loaded")
		return
	}

	decision := "pending"
	if session.decided {
		decision = session.decision.String()
	}

	sendWSMessage(conn, wsMsgSummary, wsSummaryResponse{
		Attempts: session.attempts,
		Best:     session.best,
		Decision: decision,
	})
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, errMsg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}
