package logfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/akave-ai/protokoll/internal/model"
)

// legacyLine matches the bracketed text format: [timestamp] message {json}.
var legacyLine = regexp.MustCompile(`^\[(.+?)\]\s*(.*?)\s*(\{.*\})?$`)

// DecodeLine turns one line into an entry. It tries, in order, a JSON
// value, the legacy bracketed format and finally a raw passthrough, so it
// never fails.
func DecodeLine(line string) model.Entry {
	if e, ok := decodeJSONLine(line); ok {
		return e
	}
	if rec, ok := decodeLegacyLine(line); ok {
		return model.RecordEntry(rec)
	}
	return model.RawEntry(line)
}

// decodeJSONLine accepts any single JSON value. The line is kept verbatim;
// when it is an object its string level, timestamp and message and its data
// are lifted into the record for rendering.
func decodeJSONLine(line string) (model.Entry, bool) {
	trimmed := strings.TrimSpace(line)
	var doc json.RawMessage
	if err := decodeStrict([]byte(trimmed), &doc); err != nil {
		return model.Entry{}, false
	}

	var rec model.Record
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err == nil && fields != nil {
		rec.Level = stringField(fields["level"])
		rec.Timestamp = stringField(fields["timestamp"])
		rec.Message = stringField(fields["message"])
		if raw, ok := fields["data"]; ok {
			var data any
			if err := decodeStrict(raw, &data); err == nil {
				rec.Data = data
			}
		}
	}
	return model.DocumentEntry(doc, rec), true
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func decodeLegacyLine(line string) (model.Record, bool) {
	m := legacyLine.FindStringSubmatch(line)
	if m == nil {
		return model.Record{}, false
	}
	rec := model.Record{
		Level:     model.DefaultLevel,
		Timestamp: m[1],
		Message:   m[2],
	}
	if blob := m[3]; blob != "" {
		var data any
		if err := decodeStrict([]byte(blob), &data); err != nil {
			rec.Data = blob
		} else {
			rec.Data = data
		}
	}
	return rec, true
}

// decodeStrict decodes exactly one JSON value, keeping numbers as
// json.Number so payloads survive a round trip unchanged.
func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
