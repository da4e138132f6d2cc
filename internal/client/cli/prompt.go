package cli

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// ask prints label and returns the next trimmed input line. ok is false at
// end of input.
func (s *Shell) ask(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// askPassword reads a password without echo when the input is a terminal
// and falls back to a plain line otherwise.
func (s *Shell) askPassword(label string) (string, bool) {
	if f, ok := s.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			s.log.Warn("read password", zap.Error(err))
			return "", false
		}
		return string(b), true
	}
	return s.ask(label)
}
