//go:build !unix

package telnet

import (
	"errors"
	"os"
	"os/exec"
)

// execProcess runs the client as a child and exits with its status, since
// the process image cannot be replaced here.
func execProcess(binary string, argv []string, env []string) error {
	cmd := exec.Command(binary, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
