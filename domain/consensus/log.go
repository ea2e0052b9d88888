package consensus

import (
	"github.com/dagnet/dagd/infrastructure/logger"
	"github.com/dagnet/dagd/util/panics"
)

var log = logger.RegisterSubSystem("CNSS")
var spawn = panics.GoroutineWrapperFunc(log)
