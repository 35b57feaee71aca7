// Command openai-stub is a deterministic OpenAI-compatible backend for running
// caradvisor locally without credentials:
//
//	ADDR=:8081 go run ./cmd/openai-stub &
//	OPENAI_API_KEY=stub LLM_BASE_URL=http://localhost:8081/v1 LLM_MODEL=test-model go run ./cmd/caradvisor
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// canned maps keywords in the latest user message to replies, first match wins.
var canned = []struct {
	keyword string
	reply   string
}{
	{"budget", "Consider the Honda Civic."},
	{"reliab", "The Toyota Corolla has an excellent reliability record."},
	{"fast", "Look at the Mazda MX-5 or a Ford Mustang GT."},
	{"speed", "Look at the Mazda MX-5 or a Ford Mustang GT."},
	{"electric", "The Tesla Model 3 and Kia EV6 are strong electric options."},
	{"diesel", "A Volkswagen Golf TDI balances economy and torque."},
}

const fallbackReply = "Tell me about your budget, reliability needs, preferred speed and engine type."

// failKeyword in the latest user message makes the stub answer 503.
const failKeyword = "stub-fail"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		hasSystem := false
		lastUser := ""
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				hasSystem = true
			case "user":
				lastUser = m.Content
			}
		}
		if !hasSystem {
			writeError(w, http.StatusBadRequest, "missing system instruction")
			return
		}
		if strings.Contains(lastUser, failKeyword) {
			writeError(w, http.StatusServiceUnavailable, "stub failure requested")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": replyFor(lastUser)}, "finish_reason": "stop"},
			},
		})
	})
	return mux
}

func replyFor(input string) string {
	lower := strings.ToLower(input)
	for _, c := range canned {
		if strings.Contains(lower, c.keyword) {
			return c.reply
		}
	}
	return fallbackReply
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": msg, "type": "stub_error"},
	})
}
