// Command revdiff compares two drafts of a document word by word.
//
// Usage:
//
//	revdiff --file1 draft1.txt --file2 draft2.txt --output-dir out
//	revdiff --format text draft1.txt draft2.txt
//
// It writes <prefix>.html and <prefix>.json to the output directory. When
// the drafts have no edits, nothing is written.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dacharyc/revdiff"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Exit codes
const (
	exitIdentical = 0 // drafts are identical
	exitDiffer    = 1 // drafts differ
	exitError     = 2 // error occurred
)

// cliFlags holds all parsed command-line flags
type cliFlags struct {
	file1        *string
	file2        *string
	outputDir    *string
	outputPrefix *string
	header1      *string
	header2      *string
	minParSim    *float64
	minSentSim   *float64
	simSlack     *float64
	window       *int
	similarity   *string
	stopWords    *string
	algorithm    *string
	tokenizer    *string
	delimiters   *string
	punctuation  *bool
	workers      *int
	includeSame  *bool
	format       *string
	noColor      *bool
	colorSpec    *string
	startDelete  *string
	stopDelete   *string
	startInsert  *string
	stopInsert   *string
	noDeleted    *bool
	noInserted   *bool
	noCommon     *bool
	lessMode     *bool
	printerMode  *bool
	statistics   *bool
	logLevel     *string
	timeout      *string
	help         *bool
	version      *bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// prescanConfig extracts the --config value before flag parsing
func prescanConfig(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// defineFlags sets up all command-line flags with config defaults
func defineFlags(fs *flag.FlagSet, cfg config) cliFlags {
	_ = fs.String("config", "", "YAML config file (default $XDG_CONFIG_HOME/revdiff/config.yaml)")

	f := cliFlags{
		file1:        fs.String("file1", "", "first draft"),
		file2:        fs.String("file2", "", "second draft"),
		outputDir:    fs.StringP("output-dir", "o", cfg.OutputDir, "directory for the HTML and JSON output"),
		outputPrefix: fs.String("output-prefix", "", "output file name prefix (default <file1>-<file2>-<min-par-sim>-<min-sent-sim>-<sim-slack>)"),
		header1:      fs.String("header1", cfg.Header1, "heading of the first draft in the HTML view"),
		header2:      fs.String("header2", cfg.Header2, "heading of the second draft in the HTML view"),
		minParSim:    fs.Float64("min-par-sim", cfg.MinParSim, "minimum similarity for two paragraphs to align"),
		minSentSim:   fs.Float64("min-sent-sim", cfg.MinSentSim, "minimum similarity for two sentences to align"),
		simSlack:     fs.Float64("sim-slack", cfg.SimSlack, "similarity that may be lost with each step of a 1-N or N-1 alignment"),
		window:       fs.Int("window", cfg.Window, "alignment vicinity size"),
		similarity:   fs.String("similarity", cfg.Similarity, "similarity model: tfidf, token or jaro"),
		stopWords:    fs.String("stop-words", cfg.StopWords, "file of stop words ignored by the tfidf model"),
		algorithm:    fs.StringP("algorithm", "A", cfg.Algorithm, "word diff algorithm: myers or histogram"),
		tokenizer:    fs.String("tokenizer", cfg.Tokenizer, "word tokenizer: words (Unicode word boundaries) or fields"),
		delimiters:   fs.StringP("delimiters", "d", cfg.Delimiters, "delimiter characters for the fields tokenizer"),
		punctuation:  fs.BoolP("punctuation", "P", cfg.Punctuation, "use punctuation characters as delimiters for the fields tokenizer"),
		workers:      fs.Int("workers", cfg.Workers, "concurrent sentence diffs (0 for one per CPU)"),
		includeSame:  fs.Bool("include-same", cfg.IncludeSame, "keep same records in the JSON output"),
		format:       fs.String("format", cfg.Format, "view to produce: html (file) or text (stdout)"),
		noColor:      fs.Bool("no-color", cfg.NoColor, "disable colored text output"),
		colorSpec:    fs.StringP("color", "c", cfg.Color, "set colors for deleted/inserted text (format: del_fg[:del_bg],ins_fg[:ins_bg], or 'list')"),
		startDelete:  fs.StringP("start-delete", "w", cfg.StartDelete, "string to mark begin of deleted text in the text view"),
		stopDelete:   fs.StringP("stop-delete", "x", cfg.StopDelete, "string to mark end of deleted text in the text view"),
		startInsert:  fs.StringP("start-insert", "y", cfg.StartInsert, "string to mark begin of inserted text in the text view"),
		stopInsert:   fs.StringP("stop-insert", "z", cfg.StopInsert, "string to mark end of inserted text in the text view"),
		noDeleted:    fs.BoolP("no-deleted", "1", cfg.NoDeleted, "suppress printing of deleted words"),
		noInserted:   fs.BoolP("no-inserted", "2", cfg.NoInserted, "suppress printing of inserted words"),
		noCommon:     fs.BoolP("no-common", "3", cfg.NoCommon, "suppress printing of common words"),
		lessMode:     fs.BoolP("less-mode", "l", cfg.LessMode, "use overstrike to highlight text for less -r"),
		printerMode:  fs.BoolP("printer", "p", cfg.Printer, "use overstrike to highlight text for printing"),
		statistics:   fs.BoolP("statistics", "s", false, "print statistics"),
		logLevel:     fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn or error"),
		timeout:      fs.String("timeout", durationString(cfg), "abort after this long (0 for no limit)"),
		help:         fs.BoolP("help", "h", false, "show help"),
		version:      fs.BoolP("version", "v", false, "show version"),
	}

	fs.Lookup("color").NoOptDefVal = "default"

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: revdiff [options] --file1 draft1 --file2 draft2\n")
		fmt.Fprintf(out, "       revdiff [options] draft1 draft2\n")
		fmt.Fprintf(out, "\nWord-level revision diff of two document drafts.\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExit codes:\n")
		fmt.Fprintf(out, "  0  drafts are identical (no output written)\n")
		fmt.Fprintf(out, "  1  drafts differ\n")
		fmt.Fprintf(out, "  2  error occurred\n")
	}

	return f
}

func durationString(cfg config) string {
	if cfg.Timeout == 0 {
		return "0"
	}
	return cfg.Timeout.String()
}

// run executes the command and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	configPath, err := findConfigFile(prescanConfig(args))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	fs := flag.NewFlagSet("revdiff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := defineFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitIdentical
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if *f.version {
		fmt.Fprintf(stdout, "revdiff version %s\n", Version)
		return exitIdentical
	}
	if *f.help {
		fs.Usage()
		return exitIdentical
	}
	if *f.colorSpec == "list" {
		showColorList(stdout)
		return exitIdentical
	}

	file1, file2 := *f.file1, *f.file2
	positional := fs.Args()
	if file1 == "" && len(positional) > 0 {
		file1, positional = positional[0], positional[1:]
	}
	if file2 == "" && len(positional) > 0 {
		file2 = positional[0]
	}
	if file1 == "" || file2 == "" {
		fmt.Fprintln(stderr, "Error: requires two drafts (--file1 and --file2)")
		fs.Usage()
		return exitError
	}

	applyFlags(&cfg, f)
	timeout, err := parseTimeout(*f.timeout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	cfg.Timeout = timeout
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration:\n%v\n", err)
		return exitError
	}

	logger := newLogger(cfg.LogLevel, stderr)

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	d := differ{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		prefix: *f.outputPrefix,
		stats:  *f.statistics,
	}
	code, err := d.run(ctx, file1, file2)
	if err != nil {
		var inErr *revdiff.InputError
		if errors.As(err, &inErr) {
			fmt.Fprintf(stderr, "Error reading %s: %v\n", inErr.Path, inErr.Err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}
	return code
}

// applyFlags copies flag values over the config file values.
func applyFlags(cfg *config, f cliFlags) {
	cfg.OutputDir = *f.outputDir
	cfg.Header1 = *f.header1
	cfg.Header2 = *f.header2
	cfg.MinParSim = *f.minParSim
	cfg.MinSentSim = *f.minSentSim
	cfg.SimSlack = *f.simSlack
	cfg.Window = *f.window
	cfg.Similarity = *f.similarity
	cfg.StopWords = *f.stopWords
	cfg.Algorithm = *f.algorithm
	cfg.Tokenizer = *f.tokenizer
	cfg.Delimiters = parseEscapeSequences(*f.delimiters)
	cfg.Punctuation = *f.punctuation
	cfg.Workers = *f.workers
	cfg.IncludeSame = *f.includeSame
	cfg.Format = *f.format
	cfg.NoColor = *f.noColor
	cfg.Color = *f.colorSpec
	cfg.StartDelete = parseEscapeSequences(*f.startDelete)
	cfg.StopDelete = parseEscapeSequences(*f.stopDelete)
	cfg.StartInsert = parseEscapeSequences(*f.startInsert)
	cfg.StopInsert = parseEscapeSequences(*f.stopInsert)
	cfg.NoDeleted = *f.noDeleted
	cfg.NoInserted = *f.noInserted
	cfg.NoCommon = *f.noCommon
	cfg.LessMode = *f.lessMode
	cfg.Printer = *f.printerMode
	cfg.LogLevel = *f.logLevel
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}

// newLogger returns a text logger on w at the named level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// showColorList prints available colors
func showColorList(w io.Writer) {
	fmt.Fprintln(w, "Available colors:")
	colors := revdiff.ColorNames()
	fmt.Fprintf(w, "  %s\n", strings.Join(colors[:8], ", "))
	fmt.Fprintf(w, "  %s\n", strings.Join(colors[8:], ", "))
	fmt.Fprintln(w, "\nUsage: -c delete_color[:delete_bg],insert_color[:insert_bg]")
	fmt.Fprintln(w, "Example: -c red,green")
}

// printStatistics prints comparison statistics
func printStatistics(w io.Writer, st revdiff.Statistics) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "old: %d words  %d %d%% common  %d %d%% deleted\n",
		st.OldWords,
		st.CommonWords, percent(st.CommonWords, st.OldWords),
		st.DeletedWords, percent(st.DeletedWords, st.OldWords))
	fmt.Fprintf(w, "new: %d words  %d %d%% common  %d %d%% inserted\n",
		st.NewWords,
		st.CommonWords, percent(st.CommonWords, st.NewWords),
		st.InsertedWords, percent(st.InsertedWords, st.NewWords))
	fmt.Fprintf(w, "%d substitutions\n", st.Substitutions)
}

// percent calculates percentage, handling division by zero
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part * 100) / total
}

// isTerminal returns true if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputPrefix returns the default output file prefix.
func outputPrefix(file1, file2 string, cfg config) string {
	base := func(path string) string {
		name := filepath.Base(path)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join([]string{
		base(file1),
		base(file2),
		format(cfg.MinParSim),
		format(cfg.MinSentSim),
		format(cfg.SimSlack),
	}, "-")
}

// parseEscapeSequences converts escape sequences in a string.
func parseEscapeSequences(s string) string {
	var result strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '\\' || i+1 >= len(s) {
			result.WriteByte(s[i])
			i++
			continue
		}
		switch s[i+1] {
		case 'x', 'X':
			if i+3 < len(s) {
				if val, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					result.WriteByte(byte(val))
					i += 4
					continue
				}
			}
			result.WriteByte(s[i])
			i++
		case 'n':
			result.WriteByte('\n')
			i += 2
		case 't':
			result.WriteByte('\t')
			i += 2
		case 'r':
			result.WriteByte('\r')
			i += 2
		case '\\':
			result.WriteByte('\\')
			i += 2
		default:
			result.WriteByte(s[i])
			i++
		}
	}
	return result.String()
}
