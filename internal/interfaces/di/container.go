package di

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"gnome-randr.dev/cli/internal/application/services"
	"gnome-randr.dev/cli/internal/config"
	"gnome-randr.dev/cli/internal/core/ports"
	"gnome-randr.dev/cli/internal/infrastructure/dbus"
	"gnome-randr.dev/cli/internal/interfaces/cli"
	"gnome-randr.dev/cli/internal/logging"
)

// FetcherFactory opens the transport to the display config service
type FetcherFactory func(opts dbus.Options, logger logrus.FieldLogger) (ports.StateFetcher, io.Closer, error)

// Container holds all application dependencies
type Container struct {
	newFetcher FetcherFactory
	stdout     *os.File
}

// NewContainer creates a container wired to the session bus
func NewContainer() *Container {
	return NewContainerWithFetcher(connectSessionBus)
}

// NewContainerWithFetcher creates a container using an alternative
// transport
func NewContainerWithFetcher(newFetcher FetcherFactory) *Container {
	return &Container{
		newFetcher: newFetcher,
		stdout:     os.Stdout,
	}
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return &cli.CLIContainer{
		LoadConfig:     config.Load,
		NewQueryRunner: c.newQueryRunner,
		IsTerminal:     c.isTerminal,
	}
}

// newQueryRunner builds the logger, transport and query service for cfg
func (c *Container) newQueryRunner(cfg *config.Config, stderr io.Writer) (cli.QueryRunner, io.Closer, error) {
	logger, err := logging.NewLogger(cfg.LogLevel, stderr)
	if err != nil {
		return nil, nil, err
	}

	fetcher, closer, err := c.newFetcher(dbus.Options{
		BusName:    cfg.BusName,
		ObjectPath: cfg.ObjectPath,
		Timeout:    cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	return services.NewQueryService(fetcher, logger), closer, nil
}

func (c *Container) isTerminal() bool {
	fd := c.stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func connectSessionBus(opts dbus.Options, logger logrus.FieldLogger) (ports.StateFetcher, io.Closer, error) {
	client, err := dbus.Connect(opts, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}
