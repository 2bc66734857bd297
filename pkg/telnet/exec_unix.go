//go:build unix

package telnet

import "syscall"

func execProcess(binary string, argv []string, env []string) error {
	return syscall.Exec(binary, argv, env)
}
