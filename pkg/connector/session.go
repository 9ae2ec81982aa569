// Copyright 2024-2026 Aiku AI

package connector

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aiku/amsbridge/pkg/translator"
)

// Transformer rewrites messages in both directions. *translator.Translator
// implements it.
type Transformer interface {
	Outgoing(msg translator.Message) ([]translator.Message, error)
	Incoming(msg translator.Message) ([]translator.Message, error)
}

var _ Transformer = (*translator.Translator)(nil)

// Session connects the transport of one agent connection to a Transformer.
// It never sends anything itself: frames go in as bytes and the rewritten
// frames come back to the caller for delivery.
type Session struct {
	Config *Config
	Log    zerolog.Logger

	transformer Transformer
	paramCount  int
	mu          sync.RWMutex
}

// NewSession creates a session whose translator is built from the config's
// resolved parameters.
func NewSession(cfg *Config, log zerolog.Logger) *Session {
	s := &Session{Config: cfg, Log: log}
	s.Reload(cfg.ResolveParams())
	return s
}

// Reload replaces the session translator with one built from params. Calls
// already in progress finish with the previous translator.
func (s *Session) Reload(params map[string]string) {
	params = dropEmpty(maps.Clone(params))
	tr := translator.New(params)
	s.mu.Lock()
	s.transformer = tr
	s.paramCount = len(params)
	s.mu.Unlock()
	s.Log.Info().Int("params", len(params)).Msg("Session translator loaded")
}

// SetTransformer swaps in an arbitrary Transformer. Thread-safe.
func (s *Session) SetTransformer(t Transformer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transformer = t
	s.paramCount = 0
}

// ParamCount returns how many parameters the current translator was loaded
// with. Thread-safe.
func (s *Session) ParamCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paramCount
}

func (s *Session) current() Transformer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformer
}

// logger prefers a logger carried by ctx over the session logger.
func (s *Session) logger(ctx context.Context) *zerolog.Logger {
	if log := zerolog.Ctx(ctx); log.GetLevel() != zerolog.Disabled {
		return log
	}
	return &s.Log
}

// HandleAgentFrame rewrites a frame received from the agent for the backend.
func (s *Session) HandleAgentFrame(ctx context.Context, data []byte) ([][]byte, error) {
	return s.Handle(ctx, translator.Outgoing, data)
}

// HandleBackendFrame rewrites a frame received from the backend for the agent.
func (s *Session) HandleBackendFrame(ctx context.Context, data []byte) ([][]byte, error) {
	return s.Handle(ctx, translator.Incoming, data)
}

// Handle parses one JSON frame, translates it in the given direction and
// returns the encoded results. Failures are logged and returned; the caller
// decides whether to drop the frame or close the connection.
func (s *Session) Handle(ctx context.Context, dir translator.Direction, data []byte) ([][]byte, error) {
	log := s.logger(ctx)
	msg, err := translator.Parse(data)
	if err != nil {
		log.Warn().Err(err).
			Str("direction", dir.String()).
			Int("size", len(data)).
			Msg("Failed to parse frame")
		return nil, fmt.Errorf("failed to parse %s frame: %w", dir, err)
	}

	var out []translator.Message
	switch dir {
	case translator.Outgoing:
		out, err = s.current().Outgoing(msg)
	case translator.Incoming:
		out, err = s.current().Incoming(msg)
	default:
		err = fmt.Errorf("unsupported direction %s", dir)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("direction", dir.String()).
			Str("type", msg.Type()).
			Msg("Failed to translate frame")
		return nil, err
	}

	frames := make([][]byte, len(out))
	types := make([]string, len(out))
	for i, m := range out {
		frames[i] = m.Bytes()
		types[i] = m.Type()
	}
	log.Debug().
		Str("direction", dir.String()).
		Str("type", msg.Type()).
		Strs("out_types", types).
		Msg("Translated frame")
	return frames, nil
}
