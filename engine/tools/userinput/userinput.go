// Package userinput implements the body's user_input tool (spec §6
// "user_input.create_input_function() / create_interaction(interaction_type,
// …) / create_text_editor_function()"). No dedicated teacher file survived
// retrieval for this tool (see SPEC_FULL.md §2's "teacher dependencies not
// wired" note on the full Bubble Tea TUI runtime): each affordance is a
// synchronous callable over bufio.Scanner, small enough that pulling in a
// full TUI framework for a blocking prompt/choice/edit contract would add
// weight this spec never exercises.
package userinput

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Source is the user_input tool: Reader/Writer default to stdin/stdout but
// may be swapped for deterministic testing (spec §8 S1 "a user-input tool
// returns Ada").
type Source struct {
	Reader  io.Reader
	Writer  io.Writer
	Editor  string // $EDITOR override, mainly for tests
	scanner *bufio.Scanner
}

// New builds a Source over stdin/stdout.
func New() *Source {
	return &Source{Reader: os.Stdin, Writer: os.Stdout}
}

// NewWithIO builds a Source over arbitrary reader/writer, e.g. a
// strings.Reader and a bytes.Buffer in tests.
func NewWithIO(r io.Reader, w io.Writer) *Source {
	return &Source{Reader: r, Writer: w}
}

func (s *Source) lines() *bufio.Scanner {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.Reader)
	}
	return s.scanner
}

func (s *Source) printf(format string, args ...any) {
	if s.Writer != nil {
		fmt.Fprintf(s.Writer, format, args...)
	}
}

func (s *Source) readLine() (string, error) {
	sc := s.lines()
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("userinput: reading input: %w", err)
		}
		return "", io.EOF
	}
	return sc.Text(), nil
}

// Ask implements create_input_function: print question, read one line.
func (s *Source) Ask(question string) (string, error) {
	if question != "" {
		s.printf("%s\n", question)
	}
	return s.readLine()
}

// Interact implements create_interaction: presents options for
// interactionType and reads the selected one. A numeric reply selects by
// 1-based index into options; any other reply is taken as the literal
// choice text.
func (s *Source) Interact(interactionType string, options []string) (string, error) {
	if len(options) > 0 {
		s.printf("%s:\n", interactionType)
		for i, opt := range options {
			s.printf("  %d) %s\n", i+1, opt)
		}
	}
	reply, err := s.readLine()
	if err != nil {
		return "", err
	}
	if n, convErr := strconv.Atoi(strings.TrimSpace(reply)); convErr == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
	}
	return reply, nil
}

// EditText implements create_text_editor_function: writes initial to a temp
// file, shells out to $EDITOR (or s.Editor) to edit it, and returns the
// saved content.
func (s *Source) EditText(initial string) (string, error) {
	editor := s.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	f, err := os.CreateTemp("", "normcode-edit-*.txt")
	if err != nil {
		return "", fmt.Errorf("userinput: creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("userinput: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("userinput: closing temp file: %w", err)
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("userinput: editor %q failed: %w", editor, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("userinput: reading edited file: %w", err)
	}
	return string(edited), nil
}

// Invoke implements composition.Invokable, dispatching the three affordances
// spec §6 names.
func (s *Source) Invoke(method string, kwargs map[string]any, positional []any) (any, error) {
	switch method {
	case "create_input_function":
		question := stringArg(kwargs, positional, 0, "question")
		return s.Ask(question)
	case "create_interaction":
		interactionType := stringArg(kwargs, positional, 0, "interaction_type")
		options := stringSliceArg(kwargs, "options")
		return s.Interact(interactionType, options)
	case "create_text_editor_function":
		initial := stringArg(kwargs, positional, 0, "initial")
		return s.EditText(initial)
	default:
		return nil, fmt.Errorf("userinput: unknown method %q", method)
	}
}

func stringArg(kwargs map[string]any, positional []any, idx int, name string) string {
	if v, ok := kwargs[name]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	if idx < len(positional) {
		if str, ok := positional[idx].(string); ok {
			return str
		}
	}
	return ""
}

func stringSliceArg(kwargs map[string]any, name string) []string {
	raw, ok := kwargs[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
