package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExplainSendsPromptAndReturnsText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "the answer is four"}}}},
			},
		})
	}))
	defer server.Close()

	explainer := NewExplainer(server.URL, "gemini-2.5-flash", "test-key")
	text, err := explainer.Explain(context.Background(), "What is 2 + 2?", []string{"4", "3", "5"})
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if text != "the answer is four" {
		t.Fatalf("expected verbatim text, got %q", text)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("wrong path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key not sent")
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "What is 2 + 2?") || !strings.Contains(prompt, "4, 3, 5") {
		t.Fatalf("prompt missing statement or alternatives: %q", prompt)
	}
}

func TestExplainSurfacesAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	explainer := NewExplainer(server.URL, "", "test-key")
	if _, err := explainer.Explain(context.Background(), "statement", []string{"a", "b"}); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestExplainRejectsEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	explainer := NewExplainer(server.URL, "", "test-key")
	if _, err := explainer.Explain(context.Background(), "statement", []string{"a", "b"}); err == nil {
		t.Fatalf("expected error on empty candidates")
	}
}
