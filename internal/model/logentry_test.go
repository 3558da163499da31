package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWithDefaults(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 20, 30, 400_000_000, time.UTC)
	got := Record{}.WithDefaults(now)

	if got.Level != "info" {
		t.Errorf("expected level info, got %q", got.Level)
	}
	if got.Timestamp != "2024-01-15T10:20:30.400Z" {
		t.Errorf("expected timestamp 2024-01-15T10:20:30.400Z, got %q", got.Timestamp)
	}
	if got.Message != "" || got.Data != nil {
		t.Errorf("expected empty message and nil data, got %+v", got)
	}

	kept := Record{Level: "custom", Timestamp: "t", Message: "m", Data: map[string]any{"k": "v"}}.WithDefaults(now)
	if kept.Level != "custom" || kept.Timestamp != "t" || kept.Message != "m" || kept.Data == nil {
		t.Errorf("expected provided fields kept, got %+v", kept)
	}
}

func TestNormalizeData(t *testing.T) {
	falsy := []any{nil, false, float64(0), json.Number("0"), json.Number("0.0"), ""}
	for _, v := range falsy {
		if got := NormalizeData(v); got != nil {
			t.Errorf("NormalizeData(%#v) = %#v, want nil", v, got)
		}
	}
	truthy := []any{true, float64(3), json.Number("1"), "x", map[string]any{}, []any{}}
	for _, v := range truthy {
		if got := NormalizeData(v); got == nil {
			t.Errorf("NormalizeData(%#v) = nil, want value", v)
		}
	}
}

func TestEntryJSONShapes(t *testing.T) {
	raw, err := json.Marshal(RawEntry("garbage line"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"raw":"garbage line"}` {
		t.Errorf("unexpected raw shape: %s", raw)
	}

	rec, err := json.Marshal(RecordEntry(Record{Level: "warn", Timestamp: "t", Message: "m"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(rec) != `{"level":"warn","timestamp":"t","message":"m","data":null}` {
		t.Errorf("unexpected record shape: %s", rec)
	}

	doc, err := json.Marshal(DocumentEntry(json.RawMessage(`{"message":"m","source":"x"}`), Record{Message: "m"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(doc) != `{"message":"m","source":"x"}` {
		t.Errorf("unexpected document shape: %s", doc)
	}
}

func TestEntryMarshalKeepsHTML(t *testing.T) {
	e := RecordEntry(Record{Level: "info", Timestamp: "t", Message: "<b>a&b</b>"})
	got, err := e.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"level":"info","timestamp":"t","message":"<b>a&b</b>","data":null}`; string(got) != want {
		t.Errorf("\n got %s\nwant %s", got, want)
	}

	got, err = RawEntry("<x>").MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"raw":"<x>"}`; string(got) != want {
		t.Errorf("\n got %s\nwant %s", got, want)
	}
}
