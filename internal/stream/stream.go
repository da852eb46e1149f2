// Package stream reads the short-form job's chunked progress feed: a
// long-lived response body carrying newline-delimited records, each a
// "data:"-prefixed JSON {phase, extra} object, records separated by a blank
// line. Records may arrive split across arbitrary read chunks.
package stream

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"vidmatic/internal/api"
	"vidmatic/internal/logger"
)

const dataPrefix = "data:"

var recordSep = regexp.MustCompile(`\r?\n\r?\n`)

// Splitter reassembles complete records across chunk boundaries. The
// trailing incomplete fragment is carried over to the next Feed.
type Splitter struct {
	buf string
}

// Feed appends a chunk and returns every complete record seen so far.
func (s *Splitter) Feed(chunk string) []string {
	s.buf += chunk
	parts := recordSep.Split(s.buf, -1)
	s.buf = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns whatever is buffered as a final record attempt. Called once
// at stream end; the backend does not always terminate the last record with
// a blank line.
func (s *Splitter) Flush() []string {
	rest := strings.TrimSpace(s.buf)
	s.buf = ""
	if rest == "" {
		return nil
	}
	return []string{rest}
}

// ParseRecord decodes one record. Records without the data: marker or with
// malformed JSON yield ok=false; they are dropped, never fatal.
func ParseRecord(rec string) (api.StreamEvent, bool) {
	rec = strings.TrimSpace(rec)
	if !strings.HasPrefix(rec, dataPrefix) {
		return api.StreamEvent{}, false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(rec, dataPrefix))
	var ev api.StreamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return api.StreamEvent{}, false
	}
	return ev, true
}

// Reader drives an open streaming body and emits decoded events.
type Reader struct {
	body     io.ReadCloser
	closed   sync.Once
	canceled atomic.Bool
}

// NewReader wraps an open response body.
func NewReader(body io.ReadCloser) *Reader {
	return &Reader{body: body}
}

// Run reads until the stream ends or the reader is canceled, invoking emit
// for each decoded event in arrival order. Malformed records are logged and
// skipped. Returns nil on natural end or cancellation; a read error after
// neither is a transport failure.
func (r *Reader) Run(emit func(api.StreamEvent)) error {
	var sp Splitter
	buf := make([]byte, 4096)

	handle := func(records []string) {
		for _, rec := range records {
			ev, ok := ParseRecord(rec)
			if !ok {
				logger.Warn().Str("record", truncateForLog(rec)).Msg("dropping malformed stream record")
				continue
			}
			emit(ev)
		}
	}

	for {
		n, err := r.body.Read(buf)
		if n > 0 {
			handle(sp.Feed(string(buf[:n])))
		}
		if err != nil {
			handle(sp.Flush())
			wasCanceled := r.canceled.Load()
			r.Cancel()
			if err == io.EOF || wasCanceled {
				return nil
			}
			return err
		}
	}
}

// Cancel releases the underlying body. Safe to call multiple times and after
// natural completion.
func (r *Reader) Cancel() {
	r.canceled.Store(true)
	r.closed.Do(func() {
		_ = r.body.Close()
	})
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "…"
	}
	return s
}
