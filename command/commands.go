// Package command holds the CLI commands of catalogd.
package command

import (
	"os"

	"github.com/fedcloud/catalogd/command/agent"
	"github.com/hashicorp/cli"
)

// Commands returns the mapping of CLI commands. The meta parameter lets
// callers share a base UI.
func Commands(ui cli.Ui) map[string]cli.CommandFactory {
	if ui == nil {
		ui = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		}
	}

	return map[string]cli.CommandFactory{
		"agent": func() (cli.Command, error) {
			return &agent.Command{Ui: ui}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Ui: ui}, nil
		},
	}
}
