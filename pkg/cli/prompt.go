package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptLine prints prompt and reads one line from r, trimmed. Callers share
// one bufio.Reader so buffered keystrokes are never lost between prompts.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	answer, err := promptLine(r, w, question+" (y/N): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
