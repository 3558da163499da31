package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// DefaultLevel is used when an ingested or legacy record carries no level.
const DefaultLevel = "info"

// TimestampLayout matches the ISO-8601 form browsers produce with toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one structured log event as received from a client.
// Level is not validated against a fixed set; any string is stored verbatim.
type Record struct {
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"` // ISO8601
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

// WithDefaults fills missing fields the way the ingest path always has:
// empty level becomes "info", empty timestamp becomes now, falsy data becomes nil.
func (r Record) WithDefaults(now time.Time) Record {
	if r.Level == "" {
		r.Level = DefaultLevel
	}
	if r.Timestamp == "" {
		r.Timestamp = FormatTimestamp(now)
	}
	r.Data = NormalizeData(r.Data)
	return r
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NormalizeData collapses false, 0 and "" to nil. Objects, arrays and
// other values pass through untouched.
func NormalizeData(v any) any {
	switch d := v.(type) {
	case nil:
		return nil
	case bool:
		if !d {
			return nil
		}
	case float64:
		if d == 0 {
			return nil
		}
	case json.Number:
		if f, err := d.Float64(); err == nil && f == 0 {
			return nil
		}
	case string:
		if d == "" {
			return nil
		}
	}
	return v
}

// Entry is one decoded line of a day file. It is either a Record or, when
// the line could not be decoded, the untouched line in Raw. Entries read
// from JSON lines also keep the line's own JSON text so that keys outside
// Record survive a round trip.
type Entry struct {
	Record
	Raw string `json:"-"`
	raw bool
	doc json.RawMessage
}

// RecordEntry wraps a decoded record.
func RecordEntry(r Record) Entry {
	return Entry{Record: r}
}

// DocumentEntry wraps a line that parsed as a JSON value. rec holds the
// Record fields the document carried; doc is emitted as is.
func DocumentEntry(doc json.RawMessage, rec Record) Entry {
	return Entry{Record: rec, doc: doc}
}

// RawEntry wraps a line that matched no known format.
func RawEntry(line string) Entry {
	return Entry{Raw: line, raw: true}
}

// IsRaw reports whether the entry is a raw passthrough.
func (e Entry) IsRaw() bool { return e.raw }

// Document returns the JSON text of the source line, or nil when the entry
// did not come from a JSON line.
func (e Entry) Document() json.RawMessage { return e.doc }

// MarshalJSON emits {"raw": line}, the source document, or the record
// fields. HTML characters are left unescaped to match the file contents.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch {
	case e.raw:
		return marshalUnescaped(struct {
			Raw string `json:"raw"`
		}{Raw: e.Raw})
	case e.doc != nil:
		return e.doc, nil
	}
	return marshalUnescaped(e.Record)
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
