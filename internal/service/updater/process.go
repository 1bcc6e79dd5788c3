package updater

import (
	"os"

	"github.com/mitchellh/go-ps"
)

// processTerminator stops the processes running any of the given executables.
type processTerminator func(executables []string) error

// terminateProcesses kills every other process whose executable is in names.
func terminateProcesses(names []string) error {
	return killMatching(ps.Processes, os.Getpid(), names, func(pid int) error {
		process, err := os.FindProcess(pid)
		if err != nil {
			return err
		}

		return process.Kill()
	})
}

// killMatching calls kill for every listed process named in names except self.
func killMatching(list func() ([]ps.Process, error), self int, names []string, kill func(pid int) error) error {
	if len(names) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	processes, err := list()
	if err != nil {
		return err
	}

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if _, found := wanted[process.Executable()]; !found {
			continue
		}

		if err := kill(process.Pid()); err != nil {
			return err
		}
	}

	return nil
}
