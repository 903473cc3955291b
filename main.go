package main

import (
	"fmt"
	"os"

	"github.com/fedcloud/catalogd/command"
	"github.com/fedcloud/catalogd/version"
	"github.com/hashicorp/cli"
)

func main() {
	os.Exit(Run(os.Args[1:]))
}

// Run executes the CLI with the given arguments and returns the exit code.
func Run(args []string) int {
	c := cli.NewCLI("catalogd", version.GetVersion().VersionNumber())
	c.Args = args
	c.Commands = command.Commands(nil)

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return exitCode
}
