package reachabilitymanager

import (
	"github.com/dagnet/dagd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("REAC")
