package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/unichan"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It is responsible for
// parsing the arguments with the flag package.
//
// Commands combine through pipes. For example to sign a voucher and check
// who signed it:
//
//   $ unichan sign -balance 40 | unichan recover
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"keygen":  cmdKeygen,
	"keyaddr": cmdKeyaddr,
	"sign":    cmdSignVoucher,
	"recover": cmdRecoverSigner,
	"run":     cmdRun,
	"version": cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line tool for the payment channel ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, unichan.Version())
	return err
}

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultKeyPath() string {
	return env("UNICHAN_PRIV_KEY", os.Getenv("HOME")+"/.unichan.priv.key")
}
