package agent

import (
	"sync"
	"time"

	"github.com/fedcloud/catalogd/catalog/crud"
	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// Agent glues the configuration, the state store and the CRUD managers
// together and owns the telemetry sink.
type Agent struct {
	config  *Config
	logger  hclog.InterceptLogger
	state   *state.StateStore
	catalog *crud.Catalog

	// inmemSink holds the aggregated telemetry served by the metrics
	// endpoint.
	inmemSink *metrics.InmemSink

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

// NewAgent constructs an agent with an empty catalog.
func NewAgent(config *Config, logger hclog.InterceptLogger) (*Agent, error) {
	a := &Agent{
		config:     config,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}

	store, err := state.NewStateStore(logger)
	if err != nil {
		return nil, err
	}
	a.state = store
	a.catalog = crud.NewCatalog(logger, store)

	if err := a.setupTelemetry(); err != nil {
		return nil, err
	}

	return a, nil
}

// setupTelemetry wires the in-memory sink into the global metrics collector.
func (a *Agent) setupTelemetry() error {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	conf := metrics.DefaultConfig("catalogd")
	conf.EnableHostname = false
	if _, err := metrics.NewGlobal(conf, inm); err != nil {
		return err
	}

	a.inmemSink = inm
	return nil
}

// State returns the agent's state store.
func (a *Agent) State() *state.StateStore {
	return a.state
}

// Catalog returns the agent's CRUD manager set.
func (a *Agent) Catalog() *crud.Catalog {
	return a.catalog
}

// InmemSink returns the telemetry sink backing the metrics endpoint.
func (a *Agent) InmemSink() *metrics.InmemSink {
	return a.inmemSink
}

// Shutdown terminates the agent.
func (a *Agent) Shutdown() {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()

	if a.shutdown {
		return
	}
	a.logger.Info("requesting shutdown")
	a.shutdown = true
	close(a.shutdownCh)
}

// ShutdownCh returns a channel closed on shutdown.
func (a *Agent) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}
