package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
	"quizshow-game-service/internal/infra/memory"
)

type staticExplainer struct{}

func (staticExplainer) Explain(context.Context, string, []string) (string, error) {
	return "because it is", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	rooms := memory.NewRoomRepository(domain.Room{
		ID:     "room-1",
		PIN:    "123456",
		HostID: "prof-1",
		Config: domain.RoomConfig{Mode: domain.ModeClassic, ShowRanking: true},
		Active: true,
	})
	var pool []domain.Question
	for level := 1; level <= domain.MaxLevel; level++ {
		difficulty := domain.DifficultyForLevel(level)
		for i := 1; i <= domain.RoundsPerLevel; i++ {
			id := fmt.Sprintf("q-%s-%d", difficulty, i)
			pool = append(pool, domain.Question{
				ID:         id,
				OwnerID:    "prof-1",
				Theme:      "math",
				Statement:  "statement " + id,
				Difficulty: difficulty,
				Correct:    "right-" + id,
				Incorrect:  []string{"wrong-1-" + id, "wrong-2-" + id},
			})
		}
	}

	service := app.NewGameService(
		rooms,
		memory.NewQuestionRepository(pool),
		memory.NewSessionStore(),
		memory.NewRankingStore(),
		staticExplainer{},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialGame(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?pin=123456&nickname=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketAnswerFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dialGame(t, server)

	_, started := readNext(conn, t, "started")
	question, ok := started["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected question in started payload, got %v", started)
	}
	questionID, _ := question["id"].(string)
	if questionID == "" {
		t.Fatalf("missing question id")
	}

	// Answer correctly; the pool encodes the right answer in the ID.
	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId": questionID,
			"answer":     "right-" + questionID,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	_, result := readNext(conn, t, "answerResult")
	if correct, _ := result["correct"].(bool); !correct {
		t.Fatalf("expected correct answer, got %v", result)
	}
	if score, _ := result["score"].(float64); score != 10 {
		t.Fatalf("expected 10 points, got %v", result["score"])
	}

	// Ranking push follows every answer when the room shows it.
	_, ranking := readNext(conn, t, "ranking")
	entries, _ := ranking["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one ranking entry, got %v", ranking)
	}
}

func TestWebSocketHelpFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dialGame(t, server)

	_, started := readNext(conn, t, "started")
	question := started["question"].(map[string]any)
	questionID := question["id"].(string)

	help := map[string]any{
		"type": "help",
		"payload": map[string]any{
			"type":       "eliminate",
			"questionId": questionID,
		},
	}
	if err := conn.WriteJSON(help); err != nil {
		t.Fatalf("write help: %v", err)
	}

	_, result := readNext(conn, t, "helpResult")
	removed, _ := result["remove"].([]any)
	if len(removed) == 0 {
		t.Fatalf("expected eliminated alternatives, got %v", result)
	}

	// Same help again is rejected.
	if err := conn.WriteJSON(help); err != nil {
		t.Fatalf("write help again: %v", err)
	}
	readNext(conn, t, "error")
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
