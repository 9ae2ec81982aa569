// Copyright 2024-2026 Aiku AI

package connector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tidwall/pretty"

	"github.com/aiku/amsbridge/pkg/translator"
)

// maxFrameSize bounds a single newline-delimited frame read by Pipe.
const maxFrameSize = 16 << 20

// PipeOptions controls how Pipe writes translated frames.
type PipeOptions struct {
	// Pretty indents each output frame instead of writing one frame per line.
	Pretty bool
}

// Pipe reads newline-delimited JSON frames from r, translates each one in
// direction dir and writes the results to w. Frames that fail to translate
// are logged and skipped; their count is returned. Blank lines are ignored.
func (s *Session) Pipe(ctx context.Context, dir translator.Direction, r io.Reader, w io.Writer, opts PipeOptions) (failed int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	out := bufio.NewWriter(w)
	defer out.Flush()

	line := 0
	for scanner.Scan() {
		if err = ctx.Err(); err != nil {
			return failed, err
		}
		line++
		frame := bytes.TrimSpace(scanner.Bytes())
		if len(frame) == 0 {
			continue
		}
		results, handleErr := s.Handle(ctx, dir, frame)
		if handleErr != nil {
			s.logger(ctx).Error().Err(handleErr).Int("line", line).Msg("Skipping frame")
			failed++
			continue
		}
		for _, result := range results {
			if opts.Pretty {
				result = pretty.Pretty(result)
			} else {
				result = append(result, '\n')
			}
			if _, err = out.Write(result); err != nil {
				return failed, fmt.Errorf("failed to write frame: %w", err)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return failed, fmt.Errorf("failed to read frames: %w", err)
	}
	return failed, out.Flush()
}
