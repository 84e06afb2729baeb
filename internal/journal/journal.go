// Package journal persists completed selections as newline-delimited JSON.
// History and favorites are two journals with the same format.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Record is one selection: a station at a location of a country.
type Record struct {
	Country  string `json:"country"`
	Location string `json:"location"`
	Station  string `json:"station"`
}

// trimmed drops surrounding space from every field. Older journals carry
// transliterated names with a trailing space.
func (r Record) trimmed() Record {
	return Record{
		Country:  strings.TrimSpace(r.Country),
		Location: strings.TrimSpace(r.Location),
		Station:  strings.TrimSpace(r.Station),
	}
}

func (r Record) valid() bool {
	return r.Country != "" && r.Location != "" && r.Station != ""
}

// Journal is an append-only file of records. It assumes a single writer.
type Journal struct {
	path string
}

// New returns the journal stored at path. The file is created on first append.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal location.
func (j *Journal) Path() string {
	return j.path
}

// ReadIndex loads the journal into a nested index. A missing file is an empty
// index; lines that do not decode to a complete record are skipped.
func (j *Journal) ReadIndex() (*Index, error) {
	idx := NewIndex()

	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return idx, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			j.indexLine(idx, raw, lineNo)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return idx, fmt.Errorf("failed to read journal: %w", readErr)
		}
	}

	return idx, nil
}

func (j *Journal) indexLine(idx *Index, raw []byte, lineNo int) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return
	}

	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil || !rec.trimmed().valid() {
		idx.skipped++
		log.Debug().Str("file", j.path).Int("line", lineNo).Msg("Skipping corrupt journal line")
		return
	}
	idx.Add(rec.trimmed())
}

// Append writes rec unless the same country, location and station are already
// recorded. It reports whether a line was written.
func (j *Journal) Append(rec Record) (bool, error) {
	rec = rec.trimmed()
	if !rec.valid() {
		return false, fmt.Errorf("incomplete journal record: %+v", rec)
	}

	idx, err := j.ReadIndex()
	if err != nil {
		return false, err
	}
	if idx.Contains(rec) {
		return false, nil
	}

	line, err := encodeLine(rec)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create journal directory: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	// A previous write may have stopped mid-line; start on a fresh one.
	partial, err := endsWithoutNewline(f)
	if err != nil {
		return false, err
	}
	if partial {
		line = append([]byte("\n"), line...)
	}

	if _, err := f.Write(line); err != nil {
		return false, fmt.Errorf("failed to append to journal: %w", err)
	}

	log.Debug().Str("file", j.path).Str("station", rec.Station).Msg("Journal record appended")
	return true, nil
}

func encodeLine(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to encode journal record: %w", err)
	}
	return buf.Bytes(), nil
}

func endsWithoutNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat journal: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read journal tail: %w", err)
	}
	return last[0] != '\n', nil
}

// String renders a record for prompts.
func (r Record) String() string {
	return strings.Join([]string{r.Country, r.Location, r.Station}, " / ")
}
