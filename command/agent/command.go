package agent

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fedcloud/catalogd/version"
	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"
)

// Command is the CLI command that runs the catalogd agent until it is
// signalled to stop.
type Command struct {
	Ui   cli.Ui
	args []string

	agent      *Agent
	httpServer *HTTPServer
	logger     hclog.InterceptLogger
}

// readConfig merges defaults, the optional configuration file and the command
// line flags, in that order.
func (c *Command) readConfig() *Config {
	var dev bool
	var configPath string
	cmdConfig := &Config{}

	flags := flag.NewFlagSet("agent", flag.ContinueOnError)
	flags.Usage = func() { c.Ui.Error(c.Help()) }

	flags.BoolVar(&dev, "dev", false, "")
	flags.StringVar(&configPath, "config", "", "")
	flags.StringVar(&cmdConfig.BindAddr, "bind", "", "")
	flags.IntVar(&cmdConfig.HTTPPort, "http-port", 0, "")
	flags.StringVar(&cmdConfig.LogLevel, "log-level", "", "")
	flags.BoolVar(&cmdConfig.LogJson, "log-json", false, "")

	if err := flags.Parse(c.args); err != nil {
		return nil
	}

	config := DefaultConfig()
	if dev {
		config = DevConfig()
	}

	if configPath != "" {
		fileConfig, err := ParseConfigFile(configPath)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Error loading configuration from %s: %s", configPath, err))
			return nil
		}
		config = config.Merge(fileConfig)
	}

	return config.Merge(cmdConfig)
}

func (c *Command) Run(args []string) int {
	c.args = args
	config := c.readConfig()
	if config == nil {
		return 1
	}

	c.logger = hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:       "catalogd",
		Level:      hclog.LevelFromString(config.LogLevel),
		JSONFormat: config.LogJson,
	})

	agent, err := NewAgent(config, c.logger)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error starting agent: %s", err))
		return 1
	}
	c.agent = agent

	httpServer, err := NewHTTPServer(agent, config)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error starting HTTP server: %s", err))
		return 1
	}
	c.httpServer = httpServer

	c.Ui.Output(fmt.Sprintf("%s agent started! HTTP listening on %s",
		version.GetVersion().FullVersionNumber(false), httpServer.Addr))
	c.logger.Info("agent started", "http", httpServer.Addr, "version", version.GetVersion().VersionNumber())

	return c.handleSignals()
}

// handleSignals blocks until the agent is told to quit.
func (c *Command) handleSignals() int {
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalCh:
		c.Ui.Output(fmt.Sprintf("Caught signal: %v", sig))
	case <-c.agent.ShutdownCh():
	}

	c.httpServer.Shutdown()
	c.agent.Shutdown()
	return 0
}

func (c *Command) Synopsis() string {
	return "Runs the catalogd agent"
}

func (c *Command) Help() string {
	helpText := `
Usage: catalogd agent [options]

  Starts the catalogd agent and runs until an interrupt is received. The
  agent serves the catalog REST API.

Options:

  -dev
    Start the agent in development mode, bound to localhost with debug
    logging and the debug endpoints enabled.

  -config=<path>
    Path to an HCL configuration file.

  -bind=<addr>
    The address the HTTP server binds to. Overrides the configuration file.

  -http-port=<port>
    The port the HTTP server listens on. Overrides the configuration file.

  -log-level=<level>
    The verbosity of the logs: TRACE, DEBUG, INFO, WARN or ERROR.

  -log-json
    Output logs in JSON format.
`
	return strings.TrimSpace(helpText)
}
