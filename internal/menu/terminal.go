package menu

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalPasswords reads passwords without echo when f is a terminal.
// It returns nil otherwise so passwords are read as ordinary lines.
func TerminalPasswords(f *os.File, out io.Writer) PasswordFunc {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
}
