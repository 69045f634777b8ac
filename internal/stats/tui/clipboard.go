package tui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chris/orgstats/internal/params"
)

// yankResultMsg is sent after a yank attempt completes.
type yankResultMsg struct {
	err error
}

// oscClipboard writes an OSC 52 escape sequence to set the system clipboard.
// It implements bubbletea's ExecCommand interface so it can be used with tea.Exec.
// When running inside tmux, the sequence is wrapped in a DCS passthrough.
type oscClipboard struct {
	text   string
	stdout io.Writer
}

func (o *oscClipboard) Run() error {
	encoded := base64.StdEncoding.EncodeToString([]byte(o.text))

	var seq string
	if os.Getenv("TMUX") != "" {
		// ESCs inside the payload are doubled for tmux
		seq = fmt.Sprintf("\x1bPtmux;\x1b\x1b]52;c;%s\x07\x1b\\", encoded)
	} else {
		seq = fmt.Sprintf("\x1b]52;c;%s\x07", encoded)
	}

	_, err := io.WriteString(o.stdout, seq)
	return err
}

func (o *oscClipboard) SetStdin(_ io.Reader) {}
func (o *oscClipboard) SetStdout(w io.Writer) { o.stdout = w }
func (o *oscClipboard) SetStderr(_ io.Writer) {}

// yankToClipboard returns a tea.Cmd that writes text to the clipboard via OSC 52.
func yankToClipboard(text string) tea.Cmd {
	return tea.Exec(&oscClipboard{text: text}, func(err error) tea.Msg {
		return yankResultMsg{err: err}
	})
}

// ShareCommand returns the orgstats invocation that reopens this view
func ShareCommand(org string, p params.Params) string {
	args := []string{"orgstats", "chart"}
	if org != "" {
		args = append(args, "--org", shellQuote(org))
	}
	if p.StatsPeriod != "" {
		args = append(args, "--period", p.StatsPeriod)
	}
	if p.Start != "" {
		args = append(args, "--start", p.Start)
	}
	if p.End != "" {
		args = append(args, "--end", p.End)
	}
	if p.UTC {
		args = append(args, "--utc")
	}
	return strings.Join(args, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
