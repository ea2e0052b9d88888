package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs that `functionName` started and returns
// a function to defer, which logs how long the function took to run.
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}
