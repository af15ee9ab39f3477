// Package source turns external inputs into record streams. Every source
// yields one value.Value per call to Next and returns io.EOF when drained,
// which is the shape the engine drivers consume.
package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/goshape/internal/logger"
	"github.com/dbsmedya/goshape/internal/value"
)

// maxLineBytes caps a single NDJSON line. Lines beyond this abort the run
// rather than silently truncating a record.
const maxLineBytes = 16 << 20

// ArrayMode says how a leading top-level array is treated.
type ArrayMode int

const (
	// ArrayAuto explodes the input into records when it leads with '['.
	ArrayAuto ArrayMode = iota
	// ArrayAlways requires the input to be one array document.
	ArrayAlways
	// ArrayNever reads line by line even when the input leads with '['.
	ArrayNever
)

// Reader yields records from a JSON input. Inputs that lead with '[' are
// treated as a single array document whose elements are the records
// (unless mode says otherwise); everything else is read as NDJSON, one
// record per line, skipping lines that do not decode.
type Reader struct {
	name    string
	log     *logger.Logger
	scanner *bufio.Scanner
	dec     *value.Decoder
	done    bool
	line    int64
	skipped int64
}

// NewReader builds a record source for r. The name labels log entries and
// errors; it is usually a file path or "stdin".
func NewReader(r io.Reader, name string, mode ArrayMode, log *logger.Logger) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	lead, err := leadByte(br)
	if err == io.EOF {
		// Empty input is a valid zero-record stream
		return &Reader{name: name, log: log, done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if mode == ArrayAlways && lead != '[' {
		return nil, fmt.Errorf("%s: input does not start with a JSON array", name)
	}

	if lead == '[' && mode != ArrayNever {
		dec := value.NewDecoder(br)
		if err := dec.BeginArray(); err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return &Reader{name: name, log: log, dec: dec}, nil
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{name: name, log: log, scanner: sc}, nil
}

// Next returns the next record, or io.EOF once the input is exhausted.
func (r *Reader) Next() (value.Value, error) {
	if r.done {
		return value.Value{}, io.EOF
	}
	if r.dec != nil {
		return r.nextElement()
	}
	return r.nextLine()
}

// Skipped returns how many undecodable lines were dropped so far.
func (r *Reader) Skipped() int64 { return r.skipped }

func (r *Reader) nextLine() (value.Value, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		v, err := value.Parse(text)
		if err != nil {
			r.skipped++
			r.log.Warnw("skipping undecodable line",
				"source", r.name, "line", r.line, "error", err)
			continue
		}
		return v, nil
	}
	r.done = true
	if err := r.scanner.Err(); err != nil {
		return value.Value{}, fmt.Errorf("read %s: %w", r.name, err)
	}
	return value.Value{}, io.EOF
}

func (r *Reader) nextElement() (value.Value, error) {
	v, err := r.dec.Element()
	if err == io.EOF {
		r.done = true
		return value.Value{}, io.EOF
	}
	if err != nil {
		// The stream cannot resync inside a broken array document
		r.done = true
		return value.Value{}, fmt.Errorf("read %s: %w", r.name, err)
	}
	return v, nil
}

// leadByte returns the first byte of the document proper, consuming any
// leading whitespace.
func leadByte(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return c, nil
	}
}
