package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm asks a yes/no question on stdin. Anything but y/yes is a no.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, prompt)
}

// ConfirmDanger is Confirm styled for irreversible actions such as sending
// a transaction to mainnet.
func ConfirmDanger(prompt string) bool {
	return ask(os.Stdin, os.Stdout, StyleError, "! "+prompt)
}

// ConfirmFrom asks prompt on out and reads the answer from in.
func ConfirmFrom(in io.Reader, out io.Writer, prompt string) bool {
	return ask(in, out, StyleWarning, prompt)
}

func ask(in io.Reader, out io.Writer, style lipgloss.Style, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", style.Render(prompt))
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
