package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// maxLineBytes enforces §6's "lines are <= 1 MiB" framing limit.
const maxLineBytes = 1 << 20

// Encoder writes one JSON object per line to an underlying writer,
// flushing after every send so the policy sees each message immediately —
// there is no buffering on the outbound side beyond what one Write call
// performs.
type Encoder struct {
	w    io.Writer
	sent uint64
}

// NewEncoder wraps w for newline-framed JSON output.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals v and writes it followed by a newline in a single Write.
// If w has a Flush() error method (e.g. *bufio.Writer), Encode calls it
// after the Write so nothing is held back. Every send is counted and surfaced via a logrus msg_seq
// field for diagnostics — the counter never appears in the JSON payload
// itself.
func (e *Encoder) Encode(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: encode: %w", err)
	}
	b = append(b, '\n')
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("protocol: write: %w", err)
	}
	if f, ok := e.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("protocol: flush: %w", err)
		}
	}
	e.sent++
	logrus.WithField("msg_seq", e.sent).Trace("protocol: sent message")
	return nil
}

// Decoder reads one JSON line at a time from an underlying reader. It reads
// through a 4096-byte bufio.Reader, so it may hold more than one line ahead
// of the caller; ReadLine still hands lines back one at a time.
type Decoder struct {
	r        *bufio.Reader
	received uint64
}

// NewDecoder wraps r for newline-framed JSON input.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 4096)}
}

// ReadLine reads one newline-terminated line, enforcing the maxLineBytes
// cap, and returns it with the trailing newline stripped. Every line read
// is counted and surfaced via a logrus msg_seq field for diagnostics.
func (d *Decoder) ReadLine() ([]byte, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	if len(line) > maxLineBytes {
		return nil, fmt.Errorf("protocol: line exceeds %d bytes", maxLineBytes)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	d.received++
	logrus.WithField("msg_seq", d.received).Trace("protocol: received message")
	return []byte(line), err
}

// DecodeEnvelope reads one line and unmarshals only its routing "type"
// field, leaving the raw bytes for a subsequent type-specific Unmarshal.
func (d *Decoder) DecodeEnvelope() (Envelope, []byte, error) {
	line, err := d.ReadLine()
	if err != nil {
		return Envelope{}, nil, err
	}
	var env Envelope
	if jsonErr := json.Unmarshal(line, &env); jsonErr != nil {
		return Envelope{}, line, fmt.Errorf("protocol: malformed JSON: %w", jsonErr)
	}
	return env, line, nil
}
