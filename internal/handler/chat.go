package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/krishisakhi/backend/internal/advisor"
	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/observability/metrics"
)

const (
	// maxChatHistory bounds the turns a websocket session remembers.
	maxChatHistory = 50
	pingPeriod     = 15 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

var welcome = map[domain.Language]string{
	domain.LanguageEnglish:   "Hello! I'm your AI farming assistant. How can I help you today?",
	domain.LanguageMalayalam: "നമസ്കാരം! ഞാൻ നിങ്ങളുടെ കൃഷി സഹായിയാണ്. ഇന്ന് ഞാൻ എങ്ങനെ സഹായിക്കും?",
}

// ChatHandler answers farming questions over REST and WebSocket
type ChatHandler struct {
	engine         *advisor.Engine
	logger         *slog.Logger
	allowedOrigins []string
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *advisor.Engine, logger *slog.Logger, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{engine: engine, logger: logger, allowedOrigins: allowedOrigins}
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	lang, ok := domain.ParseLanguage(req.Language)
	if !ok {
		lang = domain.LanguageEnglish
	}

	writeJSON(w, http.StatusOK, h.engine.Respond(r.Context(), message, lang))
}

// Frame types exchanged on /ws/chat
const (
	frameMessage  = "message"
	frameLanguage = "language"
	frameHistory  = "history"
	frameReply    = "reply"
	frameError    = "error"
)

// ChatFrame is one websocket message in either direction
type ChatFrame struct {
	Type     string          `json:"type"`
	Message  string          `json:"message,omitempty"`
	Language domain.Language `json:"language,omitempty"`
	Reply    *advisor.Reply  `json:"reply,omitempty"`
	History  []ChatTurn      `json:"history,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ChatTurn is one question and its answer
type ChatTurn struct {
	Question string        `json:"question"`
	Answer   advisor.Reply `json:"answer"`
	At       time.Time     `json:"at"`
}

// chatSession is the state of one websocket connection.
type chatSession struct {
	id       string
	language domain.Language
	history  []ChatTurn
}

func (s *chatSession) remember(turn ChatTurn) {
	s.history = append(s.history, turn)
	if len(s.history) > maxChatHistory {
		s.history = s.history[len(s.history)-maxChatHistory:]
	}
}

func (h *ChatHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// non-browser clients
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeWS handles GET /ws/chat. Each connection keeps its own language and
// a bounded history of turns.
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := h.upgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	lang, ok := domain.ParseLanguage(r.URL.Query().Get("language"))
	if !ok {
		lang = domain.LanguageEnglish
	}
	session := &chatSession{id: uuid.NewString(), language: lang}

	metrics.ChatSessionOpened()
	defer metrics.ChatSessionClosed()
	h.logger.Debug("chat session opened", slog.String("session_id", session.id))

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
			case <-done:
				return
			}
		}
	}()

	if err := ws.WriteJSON(ChatFrame{Type: frameReply, Language: lang, Reply: &advisor.Reply{
		Text:     welcome[lang],
		Language: lang,
		Rule:     "welcome",
	}}); err != nil {
		return
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("chat session dropped",
					slog.String("session_id", session.id),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		if err := ws.WriteJSON(h.handleFrame(r, session, data)); err != nil {
			return
		}
	}
}

// handleFrame processes one client frame. Plain text is treated as a
// question.
func (h *ChatHandler) handleFrame(r *http.Request, s *chatSession, data []byte) ChatFrame {
	var in ChatFrame
	if err := json.Unmarshal(data, &in); err != nil {
		in = ChatFrame{Type: frameMessage, Message: string(data)}
	}

	switch in.Type {
	case frameLanguage:
		lang, ok := domain.ParseLanguage(string(in.Language))
		if !ok || in.Language == "" {
			return ChatFrame{Type: frameError, Error: "language must be en or ml"}
		}
		s.language = lang
		return ChatFrame{Type: frameLanguage, Language: lang}
	case frameHistory:
		return ChatFrame{Type: frameHistory, Language: s.language, History: append([]ChatTurn{}, s.history...)}
	case frameMessage, "":
		question := strings.TrimSpace(in.Message)
		if question == "" {
			return ChatFrame{Type: frameError, Error: "message is required"}
		}
		lang := s.language
		if in.Language != "" {
			if l, ok := domain.ParseLanguage(string(in.Language)); ok {
				lang = l
			}
		}
		reply := h.engine.Respond(r.Context(), question, lang)
		s.remember(ChatTurn{Question: question, Answer: reply, At: time.Now().UTC()})
		return ChatFrame{Type: frameReply, Language: reply.Language, Reply: &reply}
	default:
		return ChatFrame{Type: frameError, Error: "unknown frame type " + in.Type}
	}
}
