package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/akave-ai/protokoll/internal/model"
)

// Renderer writes decoded entries to an output stream.
type Renderer interface {
	Render(entry model.Entry) error
}

// New returns the renderer for format ("text" or "json").
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "", "text":
		return NewTextRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q: want text or json", format)
	}
}

var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleRaw   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	styleTime  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleData  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// TextRenderer prints entries with level-based colors.
type TextRenderer struct {
	w io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(entry model.Entry) error {
	if entry.IsRaw() {
		_, err := fmt.Fprintln(r.w, styleRaw.Render("raw   "+entry.Raw))
		return err
	}
	if doc := entry.Document(); len(doc) > 0 && doc[0] != '{' {
		_, err := fmt.Fprintln(r.w, styleRaw.Render("json  "+string(doc)))
		return err
	}

	line := fmt.Sprintf("%s %s %s", styleTime.Render(entry.Timestamp), styleLevelTag(entry.Level), entry.Message)
	if entry.Data != nil {
		data, err := json.Marshal(entry.Data)
		if err != nil {
			return err
		}
		line += " " + styleData.Render(string(data))
	}
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func styleLevelTag(level string) string {
	padded := fmt.Sprintf("%-5s", strings.ToUpper(level))
	switch strings.ToLower(level) {
	case "debug":
		return styleDebug.Render(padded)
	case "warn", "warning":
		return styleWarn.Render(padded)
	case "error":
		return styleError.Render(padded)
	default:
		return styleInfo.Render(padded)
	}
}

// JSONRenderer prints each entry as one JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONRenderer{enc: enc}
}

func (r *JSONRenderer) Render(entry model.Entry) error {
	return r.enc.Encode(entry)
}
