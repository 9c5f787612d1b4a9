package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
)

// WSHandler exposes the game engine over a websocket: the player joins with
// a room PIN, then submits answers and help requests as JSON messages.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type helpPayload struct {
	Type       domain.HelpType `json:"type"`
	QuestionID string          `json:"questionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type rankingPayload struct {
	Entries []domain.RankingEntry `json:"entries"`
}

// ServeWS upgrades the connection and runs one game session over it. All
// writes happen from this goroutine, so no write lock is needed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	pin := r.URL.Query().Get("pin")
	nickname := r.URL.Query().Get("nickname")
	if pin == "" || nickname == "" {
		http.Error(w, "missing pin or nickname", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	started, err := h.service.StartSession(ctx, pin, nickname)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	_ = conn.WriteJSON(outboundMessage[app.StartResult]{Type: "started", Payload: started})

	session, err := h.service.SessionDetail(ctx, started.SessionID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	roomID := session.RoomID
	showRanking := started.Config.ShowRanking

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, errors.New("invalid answer payload"))
				continue
			}
			result, err := h.service.ProcessAnswer(ctx, started.SessionID, payload.QuestionID, payload.Answer)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[app.AnswerResult]{Type: "answerResult", Payload: result})
			if showRanking {
				h.pushRanking(conn, ctx, roomID)
			}

		case "help":
			var payload helpPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, errors.New("invalid help payload"))
				continue
			}
			result, err := h.service.ProcessHelp(ctx, started.SessionID, payload.Type, payload.QuestionID)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[app.HelpResult]{Type: "helpResult", Payload: result})

		case "ranking":
			if !showRanking {
				h.writeError(conn, errors.New("ranking hidden for this room"))
				continue
			}
			h.pushRanking(conn, ctx, roomID)

		case "forfeit":
			final, err := h.service.Forfeit(ctx, started.SessionID)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			_ = conn.WriteJSON(outboundMessage[*domain.Session]{Type: "forfeited", Payload: final})

		default:
			h.writeError(conn, errors.New("unsupported message type"))
		}
	}
}

func (h *WSHandler) pushRanking(conn *websocket.Conn, ctx context.Context, roomID string) {
	entries, err := h.service.TopRanking(ctx, roomID, domain.RankingLimit)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	_ = conn.WriteJSON(outboundMessage[rankingPayload]{Type: "ranking", Payload: rankingPayload{Entries: entries}})
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}
