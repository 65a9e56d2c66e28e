package cliutil

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const pkgName = "livetw"

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// roleStyles maps supervised role tags to their console colours.
var roleStyles = map[string]lipgloss.Style{
	"twcss": cyanStyle,
	"flask": greenStyle,
}

// Console serializes tagged output from concurrently running relays onto a
// single writer. Raw line bytes are forwarded untouched after the tag prefix
// so child process output survives round-tripping exactly.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsole wraps the writer. Styling is enabled only when the writer is a
// terminal.
func NewConsole(out io.Writer) *Console {
	c := &Console{out: out}
	if f, ok := out.(*os.File); ok {
		c.color = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// NewConsoleColored forces the colour setting regardless of the writer. Used
// by tests to exercise both renderings.
func NewConsoleColored(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

// Tagged writes one child process output line prefixed with its role tag. The
// line bytes are written verbatim, including any trailing newline the child
// produced; a final partial line is emitted as-is.
func (c *Console) Tagged(tag string, line []byte) {
	prefix := c.styleTag(tag)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, prefix)
	_, _ = c.out.Write(line)
}

// Printf writes a package-prefixed lifecycle message.
func (c *Console) Printf(format string, args ...any) {
	c.write(c.style(magentaStyle, "["+pkgName+"]"), fmt.Sprintf(format, args...))
}

// Infof writes an informational message.
func (c *Console) Infof(format string, args ...any) {
	c.write(c.style(cyanStyle, "[info]"), fmt.Sprintf(format, args...))
}

// Warnf writes a warning message.
func (c *Console) Warnf(format string, args ...any) {
	c.write(c.style(yellowStyle, "[warn]"), fmt.Sprintf(format, args...))
}

// Errorf writes an error message.
func (c *Console) Errorf(format string, args ...any) {
	c.write(c.style(redStyle, "[error]"), fmt.Sprintf(format, args...))
}

// Successf renders its arguments with the success accent inside a
// package-prefixed message.
func (c *Console) Successf(format string, args ...any) {
	c.Printf("%s", c.style(greenStyle, fmt.Sprintf(format, args...)))
}

// Bold renders text with emphasis when styling is enabled.
func (c *Console) Bold(s string) string {
	return c.style(boldStyle, s)
}

func (c *Console) write(prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", prefix, msg)
}

func (c *Console) styleTag(tag string) string {
	label := "[" + tag + "] "
	if !c.color {
		return label
	}
	style, ok := roleStyles[tag]
	if !ok {
		style = magentaStyle
	}
	return style.Render("["+tag+"]") + " "
}

func (c *Console) style(style lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return style.Render(s)
}
