package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/wippyai/function-abi/config"
	"github.com/wippyai/function-abi/runtime"
	"github.com/wippyai/function-abi/tree"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeOutput prints the encoded output. JSON is indented when asked to or
// when w is a terminal, and coloured only on a terminal.
func writeOutput(w io.Writer, cfg *config.Config, out []byte, indent bool) error {
	format, err := tree.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	if format != tree.FormatJSON {
		_, err := w.Write(out)
		return err
	}

	tty := isTerminal(w)
	if indent || tty {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	if tty {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}

// report prints guest logs, guest stdio and a status line to w.
func report(w io.Writer, res *runtime.Result, runErr error) {
	if res != nil {
		section(w, "logs", res.Logs)
		if res.LogsDropped > 0 {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("(%d earlier log bytes dropped)", res.LogsDropped)))
		}
		section(w, "stdout", res.Stdout)
		section(w, "stderr", res.Stderr)
	}

	if !isTerminal(w) {
		return
	}
	status := okStyle.Render("ok")
	if runErr != nil {
		status = errorStyle.Render("failed")
	}
	if res == nil {
		fmt.Fprintln(w, status)
		return
	}
	fmt.Fprintf(w, "%s %s\n", status, dimStyle.Render(fmt.Sprintf(
		"%s  reads=%d writes=%d interns=%d logs=%d",
		res.Duration.Round(time.Microsecond), res.Stats.Reads, res.Stats.Writes, res.Stats.Interns, res.Stats.Logs)))
}

func section(w io.Writer, name string, body []byte) {
	if len(body) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("--- "+name+" ---"))
	_, _ = w.Write(body)
	if body[len(body)-1] != '\n' {
		fmt.Fprintln(w)
	}
}
