// Copyright 2024-2026 Aiku AI

package connector

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiku/amsbridge/pkg/translator"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes from a logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig() *Config {
	return &Config{
		Session: SessionConfig{
			AgentID:    "agent-1",
			AgentOldID: "legacy-7",
			Account:    "acct-9",
		},
	}
}

// newTestSession creates a Session over testConfig that logs to a buffer.
func newTestSession(t *testing.T) (*Session, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	log := zerolog.New(buf).Level(zerolog.DebugLevel)
	return NewSession(testConfig(), log), buf
}

// fakeTransformer records calls and fans each message out or drops it.
type fakeTransformer struct {
	copies int
	err    error

	mu    sync.Mutex
	calls []string
}

func (f *fakeTransformer) record(dir string, msg translator.Message) ([]translator.Message, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dir+":"+msg.Type())
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]translator.Message, f.copies)
	for i := range out {
		out[i] = msg
	}
	return out, nil
}

func (f *fakeTransformer) Outgoing(msg translator.Message) ([]translator.Message, error) {
	return f.record("outgoing", msg)
}

func (f *fakeTransformer) Incoming(msg translator.Message) ([]translator.Message, error) {
	return f.record("incoming", msg)
}
