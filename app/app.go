package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dagnet/dagd/infrastructure/config"
	"github.com/dagnet/dagd/infrastructure/db/database/ldb"
	"github.com/dagnet/dagd/infrastructure/logger"
	"github.com/dagnet/dagd/infrastructure/os/signal"
	"github.com/dagnet/dagd/util/panics"
	"github.com/dagnet/dagd/version"
)

// StartApp starts the dagd app, and blocks until it shuts down or panics
func StartApp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	return startApp(cfg)
}

func startApp(cfg *config.Config) error {
	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the RPC server.
	interrupt := signal.InterruptListener()
	defer log.Info("Shutdown complete")

	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	err := logger.SetLogLevels(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	databaseContext, err := openDB(cfg)
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %+v", err)
		}
	}()

	componentManager, err := NewComponentManager(cfg, databaseContext)
	if err != nil {
		log.Errorf("Loading ComponentManager failed: %+v", err)
		return err
	}
	defer componentManager.Stop()

	err = componentManager.Start()
	if err != nil {
		log.Errorf("Starting ComponentManager failed: %+v", err)
		return err
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems.
	<-interrupt
	return nil
}

func openDB(cfg *config.Config) (*ldb.LevelDB, error) {
	dbPath := filepath.Join(cfg.DataDir, "db")
	err := os.MkdirAll(dbPath, 0700)
	if err != nil {
		return nil, err
	}
	log.Infof("Loading database from '%s'", dbPath)
	return ldb.NewLevelDB(dbPath)
}
