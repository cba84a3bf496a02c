package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const Title = "Cohere Chat CLI"

// Kind selects the visual treatment of a message
type Kind int

const (
	// KindInfo is an assistant reply, prefixed with a marker
	KindInfo Kind = iota
	KindWarning
	KindError
	// KindPlain is unstyled text
	KindPlain
)

// Command is one row of the header's command reference
type Command struct {
	Name        string
	Description string
}

// Commands lists the in-chat commands shown at startup
var Commands = []Command{
	{Name: "exit", Description: "leave the application"},
	{Name: "new", Description: "start a new conversation"},
}

// Display renders chat output to a writer
type Display struct {
	out      io.Writer
	title    lipgloss.Style
	marker   lipgloss.Style
	warning  lipgloss.Style
	errStyle lipgloss.Style
	border   lipgloss.Style
	prompt   lipgloss.Style
}

// New builds a Display whose color profile follows the writer
func New(out io.Writer) *Display {
	if out == nil {
		out = io.Discard
	}
	r := lipgloss.NewRenderer(out)
	return &Display{
		out:      out,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		marker:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")),
		errStyle: r.NewStyle().Foreground(lipgloss.Color("1")),
		border:   r.NewStyle().Foreground(lipgloss.Color("8")),
		prompt:   r.NewStyle().Bold(true),
	}
}

// ShowHeader prints the title and the command reference table
func (d *Display) ShowHeader() {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(d.border).
		Headers("Command", "Description")
	for _, c := range Commands {
		t.Row(c.Name, c.Description)
	}

	_, _ = fmt.Fprintln(d.out, d.title.Render(Title))
	_, _ = fmt.Fprintln(d.out)
	_, _ = fmt.Fprintln(d.out, t.Render())
}

// Show prints a message with the treatment for its kind
func (d *Display) Show(text string, kind Kind) {
	switch kind {
	case KindWarning:
		_, _ = fmt.Fprintln(d.out, d.warning.Render(text))
	case KindError:
		_, _ = fmt.Fprintln(d.out, d.errStyle.Render(text))
	case KindPlain:
		_, _ = fmt.Fprintln(d.out, text)
	default:
		_, _ = fmt.Fprintf(d.out, "%s %s\n", d.marker.Render(">"), text)
	}
}

// Prompt writes a question label and leaves the cursor on the same line
func (d *Display) Prompt(label string) {
	_, _ = fmt.Fprintf(d.out, "\n%s ", d.prompt.Render(label))
}
