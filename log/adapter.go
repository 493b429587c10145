package log

// globalLogger is the global logger instance that can be replaced by the
// caller (e.g. filecache.Cache.SetLogger(log.GetLogger())).
var globalLogger ILogger

// SetLogger sets the global logger instance.
// This allows developers to use their own logger implementation.
func SetLogger(l ILogger) {
	globalLogger = l
}

// GetLogger returns the global logger instance, defaulting to NopLogger
// when none has been set: library components never log unless a caller
// opts in.
func GetLogger() ILogger {
	if globalLogger == nil {
		globalLogger = NopLogger()
	}
	return globalLogger
}
