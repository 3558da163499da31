package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/protokoll/internal/logfile"
	"github.com/akave-ai/protokoll/internal/logger"
	"github.com/akave-ai/protokoll/internal/model"
	"github.com/akave-ai/protokoll/internal/repository"
	"github.com/akave-ai/protokoll/internal/response"
)

// FileAppender appends a record to the current day file.
type FileAppender interface {
	Append(rec model.Record) error
}

// FileReader decodes the file of a given day.
type FileReader interface {
	Read(day time.Time) (logfile.ReadResult, error)
}

// LogHandler serves /api/logs, /api/logs/file and /api/health. It only
// depends on Echo through echo.Context.
type LogHandler struct {
	Store  repository.Store
	Writer FileAppender
	Reader FileReader
	Logger zerolog.Logger
	Now    func() time.Time
}

func (h *LogHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Ingest stores one record (POST /api/logs). A failed file append is logged
// and does not change the response.
func (h *LogHandler) Ingest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			// body limit exceeded
			return he
		}
		return response.BadRequest(c, "Invalid request body")
	}
	rec, msg := parseRecord(body)
	if msg != "" {
		return response.BadRequest(c, msg)
	}
	rec = rec.WithDefaults(h.now())

	ctx := c.Request().Context()
	id, err := h.Store.Append(ctx, rec)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to store log")
		return response.InternalError(c, "Failed to store log")
	}

	logger.ForLevel(h.Logger, rec.Level).
		Str("client_ts", rec.Timestamp).
		Int64("log_id", id).
		Msg(rec.Message)

	if err := h.Writer.Append(rec); err != nil {
		h.Logger.Error().Err(err).Msg("failed to write log to file")
	}

	return response.OK(c, response.IngestResponse{
		Success: true,
		Message: "Log received",
		LogID:   id,
	})
}

// List returns every stored record in insertion order (GET /api/logs).
func (h *LogHandler) List(c echo.Context) error {
	records, err := h.Store.List(c.Request().Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to list logs")
		return response.InternalError(c, "Failed to list logs")
	}
	if records == nil {
		records = []model.Record{}
	}
	return response.List(c, len(records), records)
}

// ListFile returns today's file decoded line by line (GET /api/logs/file).
func (h *LogHandler) ListFile(c echo.Context) error {
	res, err := h.Reader.Read(h.now())
	if err != nil {
		if errors.Is(err, logfile.ErrNotFound) {
			return response.NotFound(c, "Log file not found for today")
		}
		h.Logger.Error().Err(err).Msg("failed to read log file")
		return response.InternalError(c, "Failed to read log file")
	}
	entries := res.Entries
	if entries == nil {
		entries = []model.Entry{}
	}
	return response.List(c, res.Count, entries)
}

// Health reports liveness (GET /api/health).
func (h *LogHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: model.FormatTimestamp(h.now()),
	})
}

// parseRecord decodes an ingest body. It returns a non-empty message when
// the body must be rejected. An empty body counts as an empty object.
func parseRecord(body []byte) (model.Record, string) {
	var rec model.Record
	if len(bytes.TrimSpace(body)) == 0 {
		return rec, ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return rec, "Invalid request body"
	}

	message, present, ok := stringField(fields, "message")
	if present && !ok {
		return rec, "Message must be a string"
	}
	rec.Message = message

	rec.Level = looseString(fields["level"])
	rec.Timestamp = looseString(fields["timestamp"])

	if raw, ok := fields["data"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rec.Data); err != nil {
			return rec, "Invalid request body"
		}
	}
	return rec, ""
}

// stringField reports the value of a string field, whether the field was
// present and whether it held a JSON string.
func stringField(fields map[string]json.RawMessage, name string) (value string, present bool, ok bool) {
	raw, present := fields[name]
	if !present {
		return "", false, false
	}
	if isNull(raw) {
		return "", true, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, false
	}
	return value, true, true
}

// looseString reads level and timestamp. Falsy values (null, false, 0, "")
// count as missing so the default applies; other non-string values are kept
// as their JSON text.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || model.NormalizeData(v) == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
