// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"testing"
	"time"
)

func encodeLine(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return append(data, '\n')
}

func TestChannelSink_Write(t *testing.T) {
	sink := NewChannelSink(10)
	defer sink.Close()

	data := encodeLine(t, map[string]any{
		"level":  "debug",
		"ts":     1700000000.5,
		"logger": "resolver",
		"msg":    "inspected directory",
		"dir":    "/tmp/t",
		"caller": "resolver.go:42",
	})

	n, err := sink.Write(data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(data) {
		t.Errorf("Write() = %d, want %d", n, len(data))
	}

	select {
	case got := <-sink.Entries():
		if got.Message != "inspected directory" {
			t.Errorf("Message = %q, want %q", got.Message, "inspected directory")
		}
		if got.Scope != "resolver" {
			t.Errorf("Scope = %q, want %q", got.Scope, "resolver")
		}
		if got.Level != "DEBUG" {
			t.Errorf("Level = %q, want %q", got.Level, "DEBUG")
		}
		if got.Field("dir") != "/tmp/t" {
			t.Errorf("Field(dir) = %q, want %q", got.Field("dir"), "/tmp/t")
		}
		if _, ok := got.Fields["caller"]; ok {
			t.Error("caller should not be kept as a field")
		}
		if got.Timestamp.Unix() != 1700000000 {
			t.Errorf("Timestamp = %v, want unix 1700000000", got.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for log entry")
	}
}

func TestChannelSink_DropsOldestWhenFull(t *testing.T) {
	sink := NewChannelSink(2)
	defer sink.Close()

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := sink.Write(encodeLine(t, map[string]any{"msg": msg})); err != nil {
			t.Fatalf("Write(%s) error = %v", msg, err)
		}
	}

	var got []string
	for i := 0; i < 2; i++ {
		got = append(got, (<-sink.Entries()).Message)
	}
	if got[0] != "two" || got[1] != "three" {
		t.Errorf("entries = %v, want [two three]", got)
	}
}

func TestChannelSink_IgnoresGarbage(t *testing.T) {
	sink := NewChannelSink(1)
	defer sink.Close()

	n, err := sink.Write([]byte("not json\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len("not json\n") {
		t.Errorf("Write() = %d, want %d", n, len("not json\n"))
	}
	select {
	case e := <-sink.Entries():
		t.Errorf("unexpected entry %+v", e)
	default:
	}
}

func TestChannelSink_Close(t *testing.T) {
	sink := NewChannelSink(1)

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := sink.Write(encodeLine(t, map[string]any{"msg": "late"})); err == nil {
		t.Error("Write() after Close() should fail")
	}
	if _, ok := <-sink.Entries(); ok {
		t.Error("Entries() should be closed")
	}
}
