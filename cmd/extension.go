package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Environment variables holding the defaults of the global flags. They are
// also passed to extensions.
const (
	EnvFile         = "CELLAR_FILE"
	EnvCurrency     = "CELLAR_CURRENCY"
	EnvVerbose      = "CELLAR_VERBOSE"
	EnvTestingToday = "CELLAR_TESTING_TODAY"
)

// RunExtension attempts to find and execute an external cellar-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "cellar-" + subcommand
	log := Logger().WithField("extension", externalCmdName)

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.WithError(err).Debug("extension not found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvFile+"="+*cellarFile)
	cmd.Env = append(cmd.Env, EnvCurrency+"="+*defaultCurrency)
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	log.WithFields(logrus.Fields{"args": args}).Debug("extension done")
	return true, 0
}
