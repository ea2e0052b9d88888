package app

import (
	"github.com/dagnet/dagd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("DAGD")
