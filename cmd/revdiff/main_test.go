package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dacharyc/revdiff"
)

const (
	draft1 = "../../testdata/draft1.txt"
	draft2 = "../../testdata/draft2.txt"
)

// runCLI runs the command with an isolated config location.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWritesOutputs(t *testing.T) {
	outDir := t.TempDir()
	code, _, stderr := runCLI(t, "--file1", draft1, "--file2", draft2, "--output-dir", outDir)
	if code != exitDiffer {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
	}

	prefix := "draft1-draft2-0.35-0.4-0.04"
	data, err := os.ReadFile(filepath.Join(outDir, prefix+".json"))
	if err != nil {
		t.Fatalf("reading JSON output: %v", err)
	}
	var out struct {
		File1Sentences []json.RawMessage           `json:"file1_sentences"`
		File2Sentences []json.RawMessage           `json:"file2_sentences"`
		Alignments     map[string]json.RawMessage `json:"alignments"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	if len(out.File1Sentences) != 3 || len(out.File2Sentences) != 4 {
		t.Errorf("sentences = %d/%d, want 3/4", len(out.File1Sentences), len(out.File2Sentences))
	}
	if _, ok := out.Alignments["-1"]; !ok {
		t.Error("alignments missing inserted sentences under -1")
	}
	if !strings.Contains(string(data), `"substitution"`) {
		t.Error("JSON output has no substitution")
	}

	page, err := os.ReadFile(filepath.Join(outDir, prefix+".html"))
	if err != nil {
		t.Fatalf("reading HTML output: %v", err)
	}
	for _, want := range []string{"<h2>Draft 1</h2>", "<h2>Draft 2</h2>", `class="substitution">Tuesday</span>`} {
		if !strings.Contains(string(page), want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
}

func TestRunIdentical(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	code, stdout, stderr := runCLI(t, "--output-dir", outDir, draft1, draft1)
	if code != exitIdentical {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitIdentical, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("output directory was created for identical drafts")
	}
	if !strings.Contains(stderr, "no edits found") {
		t.Errorf("stderr = %q, want a no edits message", stderr)
	}
}

func TestRunTextFormat(t *testing.T) {
	outDir := t.TempDir()
	code, stdout, stderr := runCLI(t,
		"--format", "text", "--output-dir", outDir, "--output-prefix", "cmp",
		"--header1", "Old", draft1, draft2)
	if code != exitDiffer {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
	}
	if !strings.Contains(stdout, "[-Tuesday-]{+Wednesday+}") {
		t.Errorf("stdout = %q, want the Tuesday substitution", stdout)
	}
	if !strings.Contains(stdout, "{+A vote is scheduled for next week.+}") {
		t.Errorf("stdout = %q, want the inserted sentence", stdout)
	}
	if _, err := os.Stat(filepath.Join(outDir, "cmp.json")); err != nil {
		t.Errorf("cmp.json not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "cmp.html")); !os.IsNotExist(err) {
		t.Errorf("cmp.html written in text format")
	}
}

func TestRunTextFormatOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "custom markers",
			args: []string{"-w", "<del>", "-x", "</del>", "-y", "<ins>", "-z", "</ins>"},
			want: []string{"<del>Tuesday</del><ins>Wednesday</ins>", "<ins>A vote is scheduled for next week.</ins>"},
		},
		{
			name: "escaped markers",
			args: []string{"--start-delete", `\t(`, "--stop-delete", `)\x21`},
			want: []string{"\t(Tuesday)!{+Wednesday+}"},
		},
		{
			name:    "no deleted",
			args:    []string{"-1"},
			want:    []string{"met on {+Wednesday+}"},
			notWant: []string{"Tuesday"},
		},
		{
			name:    "no inserted",
			args:    []string{"--no-inserted"},
			want:    []string{"met on [-Tuesday-] to"},
			notWant: []string{"Wednesday", "A vote"},
		},
		{
			name:    "no common",
			args:    []string{"-3"},
			want:    []string{"[-Tuesday-]{+Wednesday+}"},
			notWant: []string{"committee", "rising costs"},
		},
		{
			name: "less mode",
			args: []string{"-l"},
			want: []string{revdiff.OverstrikeUnderline("Tuesday") + revdiff.OverstrikeBold("Wednesday")},
		},
		{
			name:    "printer mode overrides color",
			args:    []string{"--printer", "--color=red,green"},
			want:    []string{revdiff.OverstrikeUnderline("Tuesday") + revdiff.OverstrikeBold("Wednesday")},
			notWant: []string{"\033["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "text", "-o", t.TempDir()}, tt.args...)
			args = append(args, draft1, draft2)
			code, stdout, stderr := runCLI(t, args...)
			if code != exitDiffer {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("stdout = %q, want %q", stdout, want)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(stdout, notWant) {
					t.Errorf("stdout = %q, should not contain %q", stdout, notWant)
				}
			}
		})
	}
}

func TestRunSimilarityModels(t *testing.T) {
	stop := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(stop, []byte("the a of\n"), 0o644); err != nil {
		t.Fatalf("failed to write stop words: %v", err)
	}

	tests := [][]string{
		{"--similarity", "token"},
		{"--similarity", "jaro"},
		{"--similarity", "tfidf", "--stop-words", stop},
		{"--algorithm", "histogram", "--tokenizer", "fields", "-P"},
		{"--workers", "1"},
	}
	for _, extra := range tests {
		t.Run(strings.Join(extra, " "), func(t *testing.T) {
			args := append([]string{"--format", "text", "-o", t.TempDir()}, extra...)
			args = append(args, draft1, draft2)
			code, stdout, stderr := runCLI(t, args...)
			if code != exitDiffer {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
			}
			if !strings.Contains(stdout, "Wednesday") {
				t.Errorf("stdout = %q, want the changed word", stdout)
			}
		})
	}
}

func TestRunStatistics(t *testing.T) {
	code, _, stderr := runCLI(t, "--statistics", "--format", "text", "-o", t.TempDir(), draft1, draft2)
	if code != exitDiffer {
		t.Fatalf("exit code = %d, want %d", code, exitDiffer)
	}
	for _, want := range []string{"old:", "new:", "substitutions"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr = %q, want %q", stderr, want)
		}
	}
}

func TestRunConfigFile(t *testing.T) {
	outDir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "format: text\noutput_dir: " + outDir + "\nlog_level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	code, stdout, stderr := runCLI(t, "--config", configPath, draft1, draft2)
	if code != exitDiffer {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
	}
	if !strings.Contains(stdout, "Wednesday") {
		t.Errorf("stdout = %q, want text output", stdout)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want nothing at error level", stderr)
	}
}

func TestRunConfigFileFormatOptions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "format: text\nno_common: true\nstart_insert: \"<<\"\nstop_insert: \">>\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	code, stdout, stderr := runCLI(t, "--config", configPath, "-o", t.TempDir(), draft1, draft2)
	if code != exitDiffer {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitDiffer, stderr)
	}
	if !strings.Contains(stdout, "[-Tuesday-]<<Wednesday>>") {
		t.Errorf("stdout = %q, want config markers", stdout)
	}
	if strings.Contains(stdout, "committee") {
		t.Errorf("stdout = %q, want common words suppressed", stdout)
	}
}

func TestRunErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no files", nil, "requires two drafts"},
		{"one file", []string{draft1}, "requires two drafts"},
		{"missing file", []string{draft1, missing}, "Error reading " + missing},
		{"bad threshold", []string{"--min-par-sim", "1.5", draft1, draft2}, "min_par_sim"},
		{"bad format", []string{"--format", "pdf", draft1, draft2}, "format"},
		{"bad timeout", []string{"--timeout", "soon", draft1, draft2}, "invalid timeout"},
		{"unknown flag", []string{"--bogus", draft1, draft2}, "unknown flag"},
		{"missing config", []string{"--config", missing, draft1, draft2}, "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != exitError {
				t.Errorf("exit code = %d, want %d", code, exitError)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr = %q, want %q", stderr, tt.stderr)
			}
		})
	}
}

func TestRunInfoFlags(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	if code != exitIdentical || !strings.Contains(stdout, "revdiff version") {
		t.Errorf("--version = %d, %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "--color=list")
	if code != exitIdentical || !strings.Contains(stdout, "Available colors") {
		t.Errorf("--color list = %d, %q", code, stdout)
	}

	code, _, stderr := runCLI(t, "--help")
	if code != exitIdentical || !strings.Contains(stderr, "Exit codes") {
		t.Errorf("--help = %d, %q", code, stderr)
	}
}

func TestOutputPrefix(t *testing.T) {
	cfg := defaultConfig()
	if got := outputPrefix("a/draft1.txt", "b/draft2.md", cfg); got != "draft1-draft2-0.35-0.4-0.04" {
		t.Errorf("outputPrefix() = %q", got)
	}

	cfg.MinParSim, cfg.MinSentSim, cfg.SimSlack = 0.5, 1, 0
	if got := outputPrefix("x", "y.txt", cfg); got != "x-y-0.5-1-0" {
		t.Errorf("outputPrefix() = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		off     slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(tt.level, &bytes.Buffer{})
			if !logger.Enabled(context.Background(), tt.enabled) {
				t.Errorf("level %s: %v should be enabled", tt.level, tt.enabled)
			}
			if logger.Enabled(context.Background(), tt.off) {
				t.Errorf("level %s: %v should be disabled", tt.level, tt.off)
			}
		})
	}
}

func TestParseTimeout(t *testing.T) {
	if d, err := parseTimeout("0"); err != nil || d != 0 {
		t.Errorf("parseTimeout(0) = %v, %v", d, err)
	}
	if d, err := parseTimeout("1m30s"); err != nil || d.Seconds() != 90 {
		t.Errorf("parseTimeout(1m30s) = %v, %v", d, err)
	}
	if _, err := parseTimeout("later"); err == nil {
		t.Error("parseTimeout(later) expected error")
	}
}

func TestParseEscapeSequences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"hex escape newline", `\x0A`, "\n"},
		{"hex escape tab", `\x09`, "\t"},
		{"named escape newline", `\n`, "\n"},
		{"named escape tab", `\t`, "\t"},
		{"named escape carriage return", `\r`, "\r"},
		{"escaped backslash", `\\`, `\`},
		{"unknown escape kept", `\!`, `\!`},
		{"mixed escapes with regular chars", `abc\x0Adef\nghi`, "abc\ndef\nghi"},
		{"no escapes passthrough", "(){}[]<>,.;:", "(){}[]<>,.;:"},
		{"invalid hex escape kept as-is", `\xZZ`, `\xZZ`},
		{"uppercase hex", `\X0A`, "\n"},
		{"trailing backslash", `a\`, `a\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseEscapeSequences(tt.input)
			if result != tt.expected {
				t.Errorf("parseEscapeSequences(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total, expected int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 2, 50},
		{1, 3, 33},
		{10, 10, 100},
	}

	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.expected {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.expected)
		}
	}
}
