package signal

import (
	"github.com/dagnet/dagd/infrastructure/logger"
	"github.com/dagnet/dagd/util/panics"
)

var log = logger.RegisterSubSystem("SIGN")
var spawn = panics.GoroutineWrapperFunc(log)
