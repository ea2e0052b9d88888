package app

import (
	"sync/atomic"

	"github.com/dagnet/dagd/domain/consensus"
	"github.com/dagnet/dagd/infrastructure/config"
	infrastructuredatabase "github.com/dagnet/dagd/infrastructure/db/database"
)

// ComponentManager is a wrapper for all the dagd services
type ComponentManager struct {
	cfg       *config.Config
	consensus *consensus.Consensus

	started, shutdown int32
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database) (*ComponentManager, error) {
	consensusInstance, err := consensus.New(db, cfg.NetParams)
	if err != nil {
		return nil, err
	}

	return &ComponentManager{
		cfg:       cfg,
		consensus: consensusInstance,
	}, nil
}

// Start launches all the dagd services.
func (a *ComponentManager) Start() error {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return nil
	}

	log.Trace("Starting dagd")

	return a.consensus.Init()
}

// Stop gracefully shuts down all the dagd services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Dagd is already in the process of shutting down")
		return
	}

	log.Warnf("Dagd shutting down")

	a.consensus.SignalExit()
}

// Consensus returns the consensus instance managed by this ComponentManager
func (a *ComponentManager) Consensus() *consensus.Consensus {
	return a.consensus
}
