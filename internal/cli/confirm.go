package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer asks on a terminal. Anything but "y" or "yes" is a no,
// including end of input.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm writes prompt followed by " [y/N]: " and reads one line.
func (p PromptConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AutoConfirmer answers every question the same way.
type AutoConfirmer bool

// Confirm returns the fixed answer.
func (a AutoConfirmer) Confirm(string) (bool, error) {
	return bool(a), nil
}
