package config

import (
	"os"
	"path/filepath"

	"github.com/dagnet/dagd/domain/dagconfig"
	"github.com/dagnet/dagd/infrastructure/logger"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultLogLevel        = "info"
	defaultLogDirname      = "logs"
	defaultLogFilename     = "dagd.log"
	defaultErrLogFilename  = "dagd_err.log"
	defaultDataDirname     = "data"
	defaultAppDirname      = ".dagd"
)

// Flags holds the command-line options of the application
type Flags struct {
	AppDir   string `short:"b" long:"appdir" description:"Directory to store block data and logs"`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Simnet   bool   `long:"simnet" description:"Use the simulation test network"`
}

// Config defines the configuration options of the application.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	*Flags

	// NetParams are the network parameters resolved from the flags
	NetParams *dagconfig.Params

	// DataDir is the resolved directory for the block database
	DataDir string

	// LogDir is the resolved directory for log files
	LogDir string
}

func defaultFlags() *Flags {
	return &Flags{
		AppDir:   defaultAppDir(),
		LogLevel: defaultLogLevel,
	}
}

func defaultAppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultAppDirname
	}
	return filepath.Join(homeDir, defaultAppDirname)
}

// LoadConfig parses command line options and resolves the active
// network parameters and application directories.
func LoadConfig() (*Config, error) {
	cfgFlags := defaultFlags()
	parser := flags.NewParser(cfgFlags, flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}

	cfg.NetParams = &dagconfig.MainnetParams
	if cfg.Simnet {
		cfg.NetParams = &dagconfig.SimnetParams
	}

	if _, ok := logger.LevelFromString(cfg.LogLevel); !ok {
		return nil, errors.Errorf("the given log level %q is invalid", cfg.LogLevel)
	}

	cfg.AppDir = filepath.Clean(cfg.AppDir)
	cfg.DataDir = filepath.Join(cfg.AppDir, cfg.NetParams.Name, defaultDataDirname)
	cfg.LogDir = filepath.Join(cfg.AppDir, cfg.NetParams.Name, defaultLogDirname)

	return cfg, nil
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}
