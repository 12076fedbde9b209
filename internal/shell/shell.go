// Package shell interprets line commands against a single series store.
// It backs the interactive `seriesctl shell` and can also run scripts.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xtxerr/tickseries/internal/aggregate"
	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/series"
)

type command struct {
	usage string
	help  string
	run   func(sh *Shell, args []string) (string, error)
}

// commands is set in init since handlers read it back.
var commands map[string]command

func init() {
	commands = map[string]command{
		"set":      {"set <channel> <value>", "stage a value for the current tick", (*Shell).cmdSet},
		"advance":  {"advance", "commit the current tick", (*Shell).cmdAdvance},
		"get":      {"get <channel> [ago]", "read the current or a past value", (*Shell).cmdGet},
		"range":    {"range <channel> <start> <stop> [step]", "read past values, newest first", (*Shell).cmdRange},
		"values":   {"values <channel>", "print the retained window, oldest first", (*Shell).cmdValues},
		"history":  {"history <channel>", "print the full history log", (*Shell).cmdHistory},
		"missing":  {"missing", "list channels not yet written this tick", (*Shell).cmdMissing},
		"stats":    {"stats <channel> [n]", "summarize the newest n retained values", (*Shell).cmdStats},
		"channels": {"channels", "list channels", (*Shell).cmdChannels},
		"info":     {"info", "print store statistics", (*Shell).cmdInfo},
		"reset":    {"reset", "drop every committed and pending value", (*Shell).cmdReset},
		"help":     {"help", "show this help", (*Shell).cmdHelp},
	}
}

// Shell executes commands against one store.
type Shell struct {
	store *series.Store
}

// New creates a Shell over store.
func New(store *series.Store) *Shell {
	return &Shell{store: store}
}

// Store returns the underlying store.
func (sh *Shell) Store() *series.Store {
	return sh.store
}

// IsExit reports whether line ends the session.
func IsExit(line string) bool {
	switch strings.TrimSpace(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// Execute runs one command line and returns its output.
// Blank lines and lines starting with # produce no output.
func (sh *Shell) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return "", nil
	}

	cmd, ok := commands[fields[0]]
	if !ok {
		return "", fmt.Errorf("%q (try help): %w", fields[0], errors.ErrInvalidCommand)
	}
	return cmd.run(sh, fields[1:])
}

// Run executes every line of r, writing output and errors to w.
// Command errors are reported and do not stop the session.
func (sh *Shell) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if IsExit(line) {
			return nil
		}
		sh.write(w, line)
	}
	return scanner.Err()
}

func (sh *Shell) write(w io.Writer, line string) {
	out, err := sh.Execute(line)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
}

func usage(name string) error {
	return fmt.Errorf("usage: %s: %w", commands[name].usage, errors.ErrInvalidCommand)
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer: %w", s, errors.ErrInvalidCommand)
	}
	return n, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatSeq(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (sh *Shell) cmdSet(args []string) (string, error) {
	if len(args) != 2 {
		return "", usage("set")
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", fmt.Errorf("%q is not a number: %w", args[1], errors.ErrInvalidCommand)
	}
	return "", sh.store.Set(args[0], v)
}

func (sh *Shell) cmdAdvance(args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("advance")
	}
	if err := sh.store.Advance(); err != nil {
		return "", err
	}
	return fmt.Sprintf("tick %d committed", sh.store.Ticks()-1), nil
}

func (sh *Shell) cmdGet(args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usage("get")
	}
	k := 0
	if len(args) == 2 {
		var err error
		if k, err = parseInt(args[1]); err != nil {
			return "", err
		}
	}
	x, err := sh.store.At(args[0], k)
	if err != nil {
		return "", err
	}
	return formatFloat(x), nil
}

func (sh *Shell) cmdRange(args []string) (string, error) {
	if len(args) < 3 || len(args) > 4 {
		return "", usage("range")
	}
	nums := make([]int, 0, 3)
	for _, a := range args[1:] {
		n, err := parseInt(a)
		if err != nil {
			return "", err
		}
		nums = append(nums, n)
	}
	v, err := sh.store.Get(args[0])
	if err != nil {
		return "", err
	}
	vals, err := v.Range(nums[0], nums[1], nums[2:]...)
	if err != nil {
		return "", err
	}
	return formatSeq(vals), nil
}

func (sh *Shell) cmdValues(args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("values")
	}
	v, err := sh.store.Get(args[0])
	if err != nil {
		return "", err
	}
	return formatSeq(v.Values()), nil
}

func (sh *Shell) cmdHistory(args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("history")
	}
	vals, err := sh.store.History(args[0])
	if err != nil {
		return "", err
	}
	return formatSeq(vals), nil
}

func (sh *Shell) cmdMissing(args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("missing")
	}
	missing := sh.store.Missing()
	if len(missing) == 0 {
		return "all channels written", nil
	}
	return strings.Join(missing, " "), nil
}

func (sh *Shell) cmdStats(args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usage("stats")
	}
	n := 0
	if len(args) == 2 {
		var err error
		if n, err = parseInt(args[1]); err != nil {
			return "", err
		}
	}
	v, err := sh.store.Get(args[0])
	if err != nil {
		return "", err
	}
	res, err := v.Summary(n)
	if err != nil {
		return "", err
	}
	return FormatSummary(res), nil
}

func (sh *Shell) cmdChannels(args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("channels")
	}
	return strings.Join(sh.store.Names(), " "), nil
}

func (sh *Shell) cmdInfo(args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("info")
	}
	st := sh.store.Stats()
	return fmt.Sprintf("channels=%d capacity=%d retained=%d full=%t ticks=%d evictions=%d rejected=%d history=%t",
		st.Channels, st.Capacity, st.Retained, st.Full, st.Ticks, st.Evictions, st.RejectedAdvances, st.HistoryEnabled), nil
}

func (sh *Shell) cmdReset(args []string) (string, error) {
	if len(args) != 0 {
		return "", usage("reset")
	}
	sh.store.Reset()
	return "store reset", nil
}

func (sh *Shell) cmdHelp(args []string) (string, error) {
	names := commandNames()
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %-40s %s", commands[name].usage, commands[name].help)
	}
	b.WriteString("\n  exit | quit")
	return b.String(), nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatSummary renders an aggregate result on one line.
func FormatSummary(r aggregate.Result) string {
	s := fmt.Sprintf("%s count=%d min=%s max=%s avg=%s first=%s last=%s",
		r.Channel, r.Count, formatFloat(r.Min), formatFloat(r.Max), formatFloat(r.Avg),
		formatFloat(r.First), formatFloat(r.Last))
	if r.HasPercentiles() {
		s += fmt.Sprintf(" p50=%s p90=%s p99=%s",
			formatFloat(*r.P50), formatFloat(*r.P90), formatFloat(*r.P99))
	}
	return s
}
