// Package main implements a mock LLM server for end-to-end testing of the
// coordination loop. It serves OpenAI-compatible /v1/chat/completions
// responses from text fixture files, routed by the request's "model" field,
// so loop wiring can be exercised deterministically and offline.
//
// Usage:
//
//	mock-llm -fixtures /path/to/fixtures -port 11434
//
// A fixture file holds a raw assistant reply, typically prose around a fenced
// tool_calls block. Files are named by model: "echo-agent.txt" answers model
// "echo-agent". Numbered files ("echo-agent.1.txt", "echo-agent.2.txt") are
// served in order, one per call, which lets a fixture set script a full
// multi-iteration session: first reply proposes a call, second reacts to the
// tool result, and so on. Once the numbered files run out the unnumbered file
// repeats as the fallback.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// script is the ordered reply sequence for one model.
type script struct {
	replies []string
	served  int
}

// next returns the reply for the current call and advances the cursor.
// Past the end of the sequence the last reply repeats.
func (s *script) next() (string, int) {
	idx := s.served
	s.served++
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	return s.replies[idx], idx
}

type server struct {
	mu      sync.Mutex
	scripts map[string]*script
	total   int
	logger  *slog.Logger
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing fixture reply files")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dir := *fixtureDir
	if dir == "" {
		dir = os.Getenv("MOCK_LLM_FIXTURES")
	}
	if dir == "" {
		dir = "fixtures"
	}

	scripts, err := loadScripts(dir)
	if err != nil {
		logger.Error("load fixtures", "dir", dir, "error", err)
		os.Exit(1)
	}
	for model, sc := range scripts {
		logger.Info("fixture loaded", "model", model, "replies", len(sc.replies))
	}

	s := &server{scripts: scripts, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChat)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("mock LLM listening", "addr", addr, "models", len(scripts))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	sc, ok := s.scripts[req.Model]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("no fixture for model", "model", req.Model)
		http.Error(w, fmt.Sprintf("no fixture for model %q", req.Model), http.StatusNotFound)
		return
	}
	s.total++
	call := s.total
	content, idx := sc.next()
	s.mu.Unlock()

	s.logger.Info("serving reply",
		"call", call, "model", req.Model, "reply", idx+1, "messages", len(req.Messages))

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{{
			Message:      chatMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleStats reports per-model call counts for test assertions.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	byModel := make(map[string]int, len(s.scripts))
	for model, sc := range s.scripts {
		byModel[model] = sc.served
	}
	total := s.total
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":    total,
		"calls_by_model": byModel,
	})
}

// numberedName matches sequential fixtures like "echo-agent.2.txt".
var numberedName = regexp.MustCompile(`^(.+)\.(\d+)\.txt$`)

// loadScripts builds the per-model reply sequences from a fixture directory.
// Numbered files come first in numeric order; the unnumbered "model.txt"
// file, when present, is appended last as the repeating fallback.
func loadScripts(dir string) (map[string]*script, error) {
	base := make(map[string]string)
	numbered := make(map[string]map[int]string)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if m := numberedName.FindStringSubmatch(e.Name()); m != nil {
			idx, _ := strconv.Atoi(m[2])
			if numbered[m[1]] == nil {
				numbered[m[1]] = make(map[int]string)
			}
			numbered[m[1]][idx] = string(data)
			continue
		}
		base[strings.TrimSuffix(e.Name(), ".txt")] = string(data)
	}

	scripts := make(map[string]*script)
	models := make(map[string]bool)
	for m := range base {
		models[m] = true
	}
	for m := range numbered {
		models[m] = true
	}

	for model := range models {
		var replies []string
		if seq, ok := numbered[model]; ok {
			indices := make([]int, 0, len(seq))
			for i := range seq {
				indices = append(indices, i)
			}
			sort.Ints(indices)
			for _, i := range indices {
				replies = append(replies, seq[i])
			}
		}
		if b, ok := base[model]; ok {
			replies = append(replies, b)
		}
		scripts[model] = &script{replies: replies}
	}

	if len(scripts) == 0 {
		return nil, fmt.Errorf("no .txt fixtures found in %s", dir)
	}
	return scripts, nil
}
