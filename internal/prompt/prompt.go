// Package prompt asks the operator yes/no questions on the terminal.
package prompt

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when a question is asked without an interactive terminal.
var ErrNoTerminal = errors.New("no interactive terminal")

// Confirmer asks a yes/no question and stores the answer in value.
type Confirmer interface {
	Confirm(title string, value *bool) error
}

// IsInteractive reports whether stdin and stdout are both interactive terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// HuhConfirmer implements Confirmer using charmbracelet/huh.
type HuhConfirmer struct {
	isTerminal func() bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// New returns a confirmer that checks the process's terminal.
func New() *HuhConfirmer {
	return &HuhConfirmer{isTerminal: IsInteractive}
}

// keyMap makes esc and ctrl+c both answer "no" and shows that in the help bar.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "no"))
	return km
}

// Confirm renders the question. Aborting the form leaves value false.
func (c *HuhConfirmer) Confirm(title string, value *bool) error {
	checker := c.isTerminal
	if checker == nil {
		checker = IsInteractive
	}
	if !checker() {
		return ErrNoTerminal
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(value),
	))
	form.WithKeyMap(keyMap())
	form.WithProgramOptions(
		tea.WithOutput(os.Stderr),
		tea.WithFilter(func(_ tea.Model, msg tea.Msg) tea.Msg {
			if _, ok := msg.(tea.InterruptMsg); ok {
				return tea.QuitMsg{}
			}
			return msg
		}),
	)

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		*value = false
		return nil
	}
	return err
}
