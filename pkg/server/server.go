package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/config"
	"github.com/bastiangx/dlbserve/pkg/dlb"
	"github.com/bastiangx/dlbserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultLimit = 10

// Server handles the IPC for word completions
type Server struct {
	completer suggest.ICompleter
	config     *config.Config
	configPath string
	decoder   *msgpack.Decoder
	encoder   *msgpack.Encoder
	writer    *bufio.Writer
	requests  int
}

// NewServer creates a completion server using stdin/stdout for IPC.
// Config requests are saved to configPath, or kept in memory when it is empty.
func NewServer(completer suggest.ICompleter, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(completer, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a completion server over the given streams
func NewServerWithIO(completer suggest.ICompleter, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bw := bufio.NewWriter(w)
	return &Server{
		completer:  completer,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(bufio.NewReader(r)),
		encoder:    msgpack.NewEncoder(bw),
		writer:     bw,
	}
}

// Start begins listening for IPC requests. It returns nil once the input is exhausted.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			// the stream cannot be resynchronised after a bad frame
			_ = s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("failed to decode request: %w", err)
		}
		s.requests++
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(req Request) error {
	switch req.Action {
	case "", ActionComplete:
		return s.handleComplete(req)
	case ActionAccept:
		return s.handleAccept(req)
	case ActionLookup:
		return s.handleLookup(req)
	case ActionStats:
		return s.send(StatsResponse{ID: req.ID, Stats: s.completer.Stats()})
	case ActionConfig:
		return s.handleConfig(req)
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// handleComplete validates the prefix and limit, then answers with ranked suggestions.
func (s *Server) handleComplete(req Request) error {
	cfg := s.config.Server
	prefix := req.Prefix

	if prefix == "" {
		log.Debug("Prefix is empty in request")
		return s.sendError(req.ID, "missing prefix", 400)
	}
	n := utf8.RuneCountInString(prefix)
	if n < cfg.MinPrefix {
		log.Debugf("Prefix too short: %q", prefix)
		return s.sendError(req.ID, fmt.Sprintf("prefix must be at least %d characters", cfg.MinPrefix), 400)
	}
	if cfg.MaxPrefix > 0 && n > cfg.MaxPrefix {
		log.Debugf("Prefix too long: %d characters", n)
		return s.sendError(req.ID, fmt.Sprintf("prefix exceeds maximum length of %d characters", cfg.MaxPrefix), 400)
	}
	if cfg.EnableFilter && !utils.IsValidInput(prefix) {
		log.Debugf("Prefix filtered: %q", prefix)
		return s.send(CompletionResponse{ID: req.ID, Suggestions: []CompletionSuggestion{}})
	}

	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	start := time.Now()
	var suggestions []suggest.Suggestion
	if cfg.Fuzzy {
		suggestions = s.completer.CompleteWithFuzzy(prefix, limit)
	} else {
		suggestions = s.completer.Complete(prefix, limit)
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(suggestions))
	resp := CompletionResponse{
		ID:          req.ID,
		Suggestions: make([]CompletionSuggestion, len(suggestions)),
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	}
	for i, sg := range suggestions {
		resp.Suggestions[i] = CompletionSuggestion{Word: sg.Word, Rank: ranks[i], Priority: sg.Frequency}
	}
	if len(suggestions) > 0 && suggestions[0].WasCorrected {
		resp.CorrectedPrefix = suggestions[0].CorrectedPrefix
	}
	return s.send(resp)
}

func (s *Server) handleAccept(req Request) error {
	if req.Word == "" {
		return s.sendError(req.ID, "missing word", 400)
	}
	priority, err := s.completer.Accept(req.Word)
	if err != nil {
		log.Debugf("Accept %q: %v", req.Word, err)
		return s.sendError(req.ID, err.Error(), codeFor(err))
	}
	return s.send(AcceptResponse{ID: req.ID, Word: req.Word, Priority: priority})
}

func (s *Server) handleLookup(req Request) error {
	res := s.completer.Lookup(req.Word)
	return s.send(LookupResponse{ID: req.ID, Status: res.Status.String(), Priority: res.Priority})
}

// handleConfig applies the given server settings and saves them.
func (s *Server) handleConfig(req Request) error {
	err := s.config.Update(s.configPath, req.MaxLimit, req.MinPrefix, req.MaxPrefix, req.EnableFilter)
	if err != nil {
		log.Warnf("Config update rejected: %v", err)
		return s.sendError(req.ID, err.Error(), codeFor(err))
	}
	cfg := s.config.Server
	log.Debugf("Config updated: max_limit=%d min_prefix=%d max_prefix=%d enable_filter=%v",
		cfg.MaxLimit, cfg.MinPrefix, cfg.MaxPrefix, cfg.EnableFilter)
	return s.send(ConfigResponse{
		ID:           req.ID,
		Status:       "ok",
		MaxLimit:     cfg.MaxLimit,
		MinPrefix:    cfg.MinPrefix,
		MaxPrefix:    cfg.MaxPrefix,
		EnableFilter: cfg.EnableFilter,
	})
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidValue), errors.Is(err, dlb.ErrInvalidSymbol):
		return 400
	case errors.Is(err, dlb.ErrNotFound):
		return 404
	default:
		return 500
	}
}

// send encodes one response and flushes it so the client sees it right away.
func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(CompletionError{ID: id, Error: message, Code: code})
}
