package headerprocessor

import (
	"github.com/dagnet/dagd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
