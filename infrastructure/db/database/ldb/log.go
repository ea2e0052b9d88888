package ldb

import (
	"github.com/dagnet/dagd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LVDB")
