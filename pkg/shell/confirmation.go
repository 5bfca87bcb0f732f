package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// Prompter asks the user to confirm an action, such as overwriting an
// existing script.
type Prompter interface {
	// Confirm shows message and reports whether the user answered yes.
	Confirm(message string) (bool, error)
}

// isYes reports whether an answer confirms. Anything but y or yes is no.
func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// LinePrompter asks through the shell's line editor, so the question shares
// the terminal state of the prompt.
type LinePrompter struct {
	rl *readline.Instance
}

// NewLinePrompter returns a prompter reading answers from rl.
func NewLinePrompter(rl *readline.Instance) *LinePrompter {
	return &LinePrompter{rl: rl}
}

// Confirm implements Prompter. Interrupt and EOF count as no.
func (p *LinePrompter) Confirm(message string) (bool, error) {
	prompt := p.rl.Config.Prompt
	p.rl.SetPrompt(message + " [y/N]: ")
	defer p.rl.SetPrompt(prompt)

	line, err := p.rl.Readline()
	if err == readline.ErrInterrupt || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(line), nil
}

// InteractivePrompter reads answers from a plain reader, for use outside
// the line editor.
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompter creates an InteractivePrompter using stdin/stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates an InteractivePrompter with custom I/O.
func NewInteractivePrompterWithIO(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Confirm implements Prompter. An empty answer or EOF is no.
func (p *InteractivePrompter) Confirm(message string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", message)

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(line), nil
}

// MockPrompter returns a fixed answer and records the questions asked.
type MockPrompter struct {
	Response bool
	Error    error
	Prompts  []string
}

// NewMockPrompter creates a MockPrompter that will return the given response.
func NewMockPrompter(response bool) *MockPrompter {
	return &MockPrompter{Response: response}
}

// Confirm implements Prompter.
func (m *MockPrompter) Confirm(message string) (bool, error) {
	m.Prompts = append(m.Prompts, message)
	if m.Error != nil {
		return false, m.Error
	}
	return m.Response, nil
}

var (
	_ Prompter = (*LinePrompter)(nil)
	_ Prompter = (*InteractivePrompter)(nil)
	_ Prompter = (*MockPrompter)(nil)
)
