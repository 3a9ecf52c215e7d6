package cli

import (
	"bytes"
	"strings"
	"testing"
)

// execute runs the root command with args and stdin and returns stdout,
// stderr and the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

// repeat returns n copies of line, newline-terminated.
func repeat(line string, n int) string {
	return strings.Repeat(line+"\n", n)
}
