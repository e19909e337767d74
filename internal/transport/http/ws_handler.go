package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/logger"
)

type WSHandler struct {
	service  *app.PlayService
	catalog  *app.CatalogService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PlayService, catalog *app.CatalogService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		catalog: catalog,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectQuizPayload struct {
	QuizID string `json:"quizId"`
	Topic  string `json:"topic"`
}

type selectPayload struct {
	Index *int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type joinedPayload struct {
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one play session per
// connection. Connections that share a sessionId share its session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	topic := r.URL.Query().Get("topic")
	if h.catalog != nil {
		topic = h.catalog.Topic(topic)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.log.With("sessionId", sessionID)
	h.service.Join(ctx, sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.End(ctx, sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// One writer goroutine owns the connection's write side.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{SessionID: sessionID, Topic: topic}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	sendErr := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		// State changes reach the client through the subscription.
		var opErr error
		switch inbound.Type {
		case "selectQuiz":
			var payload selectQuizPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizID == "" {
				sendErr("invalid selectQuiz payload")
				continue
			}
			if payload.Topic == "" {
				payload.Topic = topic
			}
			_, opErr = h.service.SelectQuiz(ctx, sessionID, payload.QuizID, payload.Topic)
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Index == nil {
				sendErr("invalid select payload")
				continue
			}
			_, opErr = h.service.SelectOption(ctx, sessionID, *payload.Index)
		case "continue":
			_, opErr = h.service.Continue(ctx, sessionID)
		case "restart":
			_, opErr = h.service.Restart(ctx, sessionID)
		case "leave":
			_, opErr = h.service.Leave(ctx, sessionID)
		default:
			sendErr("unsupported message type")
			continue
		}
		if opErr != nil {
			sendErr(opErr.Error())
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
