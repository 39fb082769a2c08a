package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"paradox-quiz-service/internal/app"
	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
)

type WSHandler struct {
	service  *app.StudyService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.StudyService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the study use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	boardID := r.URL.Query().Get("boardId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if boardID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing boardId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.log.With().Str("board_id", boardID).Str("user_id", userID).Logger()

	joined, err := h.service.Join(ctx, boardID, userID, displayName)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, boardID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()
	defer h.service.Leave(ctx, boardID, userID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joined}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "complete":
			var completion domain.Completion
			if err := json.Unmarshal(inbound.Payload, &completion); err != nil {
				send <- errorMessage("invalid complete payload")
				continue
			}
			result, err := h.service.Complete(ctx, boardID, userID, completion)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "completion", Payload: result}
		case "filter":
			var params engine.FilterParams
			if err := json.Unmarshal(inbound.Payload, &params); err != nil {
				send <- errorMessage("invalid filter payload")
				continue
			}
			items, err := h.service.FilterParadoxes(ctx, params)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "paradoxes", Payload: items}
		case "quizConfig":
			var req app.QuizRequest
			if err := json.Unmarshal(inbound.Payload, &req); err != nil {
				send <- errorMessage("invalid quizConfig payload")
				continue
			}
			cfg, err := h.service.BuildQuiz(ctx, req)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "quizConfig", Payload: cfg}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
