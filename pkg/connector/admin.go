// Copyright 2024-2026 Aiku AI

package connector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aiku/amsbridge/pkg/translator"
)

// maxAdminBodySize is the maximum allowed request body for admin endpoints (1 MB).
const maxAdminBodySize = 1 << 20

// AdminHandler returns the admin API routes.
func (s *Session) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reload-params", s.HandleReloadParams)
	mux.HandleFunc("/api/translate", s.HandleTranslate)
	return mux
}

// ServeAdmin runs the admin API on addr until ctx is canceled.
func (s *Session) ServeAdmin(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.AdminHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.Log.Warn().Err(err).Msg("Admin API shutdown failed")
		}
	}()
	s.Log.Info().Str("addr", addr).Msg("Starting admin API")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// readAdminBody reads a size-limited request body. It writes the error
// response itself and returns ok=false on failure.
func readAdminBody(w http.ResponseWriter, r *http.Request) (body []byte, ok bool) {
	if r.Body == nil || r.ContentLength == 0 {
		return nil, true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAdminBodySize)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return body, true
}

// HandleReloadParams is an HTTP handler for POST /api/reload-params.
// It accepts an optional JSON object of parameter names to values; if the
// body is empty or absent, parameters are re-resolved from the config and
// environment.
func (s *Session) HandleReloadParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.Log.Info().
		Str("remote_addr", r.RemoteAddr).
		Str("content_length", r.Header.Get("Content-Length")).
		Msg("Parameter reload requested")

	body, ok := readAdminBody(w, r)
	if !ok {
		return
	}
	var params map[string]string
	if len(body) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	source := "body"
	if params == nil {
		source = "config"
		if s.Config != nil {
			params = s.Config.ResolveParams()
		}
	}
	s.Log.Info().Str("source", source).Msg("Processing parameter reload")
	s.Reload(params)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]int{"params": s.ParamCount()}); err != nil {
		s.Log.Warn().Err(err).Msg("Failed to write reload response")
	}
}

// HandleTranslate is an HTTP handler for POST /api/translate?direction=...
// It translates the posted frame with the current translator and returns
// the results as a JSON array without sending them anywhere.
func (s *Session) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dir, err := translator.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, ok := readAdminBody(w, r)
	if !ok {
		return
	}

	frames, err := s.Handle(r.Context(), dir, body)
	switch {
	case errors.Is(err, translator.ErrMissingParameter):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, translator.ErrMalformedInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	parts := make([]string, len(frames))
	for i, frame := range frames {
		parts[i] = string(frame)
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = io.WriteString(w, "["+strings.Join(parts, ",")+"]\n"); err != nil {
		s.Log.Warn().Err(err).Msg("Failed to write translate response")
	}
}
