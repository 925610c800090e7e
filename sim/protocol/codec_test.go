package protocol

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestEncoder_WritesNewlineFramedJSON(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Encode(ReadyMessage{Type: TypeReady}); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if err := enc.Encode(ResetMessage{Type: TypeReset, EpisodeNumber: 2}); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"type":"READY"`) {
		t.Fatalf("expected READY in first line, got %s", lines[0])
	}
}

func TestEncoder_FlushesBufferedWriters(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	enc := NewEncoder(bw)

	if err := enc.Encode(ReadyMessage{Type: TypeReady}); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected Encode to flush through to the underlying buffer")
	}
}

func TestDecoder_ReadLineStripsNewline(t *testing.T) {
	d := NewDecoder(strings.NewReader("{\"type\":\"READY\"}\n{\"type\":\"RESET\"}\n"))

	first, err := d.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != `{"type":"READY"}` {
		t.Fatalf("unexpected first line: %s", first)
	}

	second, err := d.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second) != `{"type":"RESET"}` {
		t.Fatalf("unexpected second line: %s", second)
	}
}

func TestDecoder_DecodeEnvelopeExtractsType(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"type":"ACTION","action":{"action_type":"WAIT"}}` + "\n"))

	env, raw, err := d.DecodeEnvelope()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Type != TypeAction {
		t.Fatalf("expected type ACTION, got %s", env.Type)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw bytes to be returned for further unmarshalling")
	}
}

func TestDecoder_DecodeEnvelopeRejectsMalformedJSON(t *testing.T) {
	d := NewDecoder(strings.NewReader("not json\n"))

	if _, _, err := d.DecodeEnvelope(); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestDecoder_RejectsOversizedLine(t *testing.T) {
	huge := strings.Repeat("a", maxLineBytes+1) + "\n"
	d := NewDecoder(strings.NewReader(huge))

	if _, err := d.ReadLine(); err == nil {
		t.Fatalf("expected an error for a line exceeding the 1 MiB cap")
	}
}
