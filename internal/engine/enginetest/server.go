// Package enginetest provides an in-process fake of the remote processing engine.
package enginetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

const (
	PathTranscribe   = "/transcribe"
	PathRefineText   = "/refine_text"
	PathGenerateNote = "/generate_note"
)

// Response is a canned engine reply.
type Response struct {
	Status int
	Body   string
}

// JSON builds a Response whose body is v encoded as JSON.
func JSON(status int, v any) Response {
	data, _ := json.Marshal(v)
	return Response{Status: status, Body: string(data)}
}

// TranscribeCall is one recorded multipart upload.
type TranscribeCall struct {
	Filename string
	File     []byte
	Fields   map[string]string
}

// LLMCall is one recorded /refine_text or /generate_note request.
type LLMCall struct {
	Path string
	// Raw holds the decoded body so tests can check which keys were sent.
	Raw        map[string]any
	Transcript string
	APIKey     string
	BaseURL    string
	Model      string
}

// Gate holds requests to one path until Release is called.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered is closed when the first request reaches the gate.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

func (g *Gate) Release() {
	close(g.release)
}

type Server struct {
	*httptest.Server

	mu              sync.Mutex
	responses       map[string][]Response
	gates           map[string]*Gate
	transcribeCalls []TranscribeCall
	llmCalls        []LLMCall
	calls           int
}

// New starts a fake engine with successful default replies.
func New() *Server {
	s := &Server{
		responses: map[string][]Response{
			PathTranscribe:   {JSON(http.StatusOK, map[string]string{"transcript": "transcribed text"})},
			PathRefineText:   {JSON(http.StatusOK, map[string]string{"refined_text": "refined text"})},
			PathGenerateNote: {JSON(http.StatusOK, map[string]string{"title": "Title", "content": "Content"})},
		},
		gates: make(map[string]*Gate),
	}

	r := chi.NewRouter()
	r.Post(PathTranscribe, s.handleTranscribe)
	r.Post(PathRefineText, s.handleLLM(PathRefineText))
	r.Post(PathGenerateNote, s.handleLLM(PathGenerateNote))

	s.Server = httptest.NewServer(r)
	return s
}

// Respond queues replies for path. The last reply is repeated once the queue drains.
func (s *Server) Respond(path string, rs ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = rs
}

// Hold installs a gate on path.
func (s *Server) Hold(path string) *Gate {
	g := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[path] = g
	s.mu.Unlock()
	return g
}

// Calls returns the number of requests received on any path.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Server) TranscribeCalls() []TranscribeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TranscribeCall(nil), s.transcribeCalls...)
}

// LLMCalls returns recorded requests for path.
func (s *Server) LLMCalls(path string) []LLMCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []LLMCall
	for _, c := range s.llmCalls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	call := TranscribeCall{Fields: make(map[string]string)}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(part)
		if part.FormName() == "file" {
			call.Filename = part.FileName()
			call.File = data
			continue
		}
		call.Fields[part.FormName()] = string(data)
	}

	s.mu.Lock()
	s.transcribeCalls = append(s.transcribeCalls, call)
	s.mu.Unlock()

	s.reply(w, r, PathTranscribe)
}

func (s *Server) handleLLM(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		str := func(k string) string {
			v, _ := raw[k].(string)
			return v
		}

		s.mu.Lock()
		s.llmCalls = append(s.llmCalls, LLMCall{
			Path:       path,
			Raw:        raw,
			Transcript: str("transcript"),
			APIKey:     str("api_key"),
			BaseURL:    str("base_url"),
			Model:      str("model"),
		})
		s.mu.Unlock()

		s.reply(w, r, path)
	}
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, path string) {
	s.mu.Lock()
	s.calls++
	gate := s.gates[path]
	queue := s.responses[path]
	resp := queue[0]
	if len(queue) > 1 {
		s.responses[path] = queue[1:]
	}
	s.mu.Unlock()

	if gate != nil {
		gate.once.Do(func() { close(gate.entered) })
		select {
		case <-gate.release:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}
