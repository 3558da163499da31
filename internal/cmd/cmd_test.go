package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSelectDays(t *testing.T) {
	days, err := selectDays(t.TempDir(), "2024-01-15", false)
	if err != nil || len(days) != 1 || days[0].Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("unexpected days %v: %v", days, err)
	}

	if _, err := selectDays(t.TempDir(), "15/01/2024", false); err == nil {
		t.Error("expected error for malformed date")
	}

	today, err := selectDays(t.TempDir(), "", false)
	if err != nil || len(today) != 1 {
		t.Fatalf("unexpected today selection %v: %v", today, err)
	}
	if got, want := today[0].Format("2006-01-02"), time.Now().UTC().Format("2006-01-02"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestShowPrintsDecodedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROTOKOLL_LOGS_DIR", dir)
	t.Setenv("PROTOKOLL_PRIMARY_ENV", "test")

	content := `{"level":"info","timestamp":"t1","message":"hello","data":null}` + "\n" +
		`[t2] legacy {"a":1}` + "\n" +
		"garbage\n"
	if err := os.WriteFile(filepath.Join(dir, "protokoll_2024-01-15.log"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"show", "--date", "2024-01-15", "--output", "json", "--env-file", filepath.Join(dir, "none.env")})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("show: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		`{"level":"info","timestamp":"t1","message":"hello","data":null}`,
		`{"level":"info","timestamp":"t2","message":"legacy","data":{"a":1}}`,
		`{"raw":"garbage"}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d:\n got %s\nwant %s", i, lines[i], want[i])
		}
	}
}
