package log

// nopLogger discards every event; it's the default for library
// components (filecache.Cache, httpchunk.Decoder) so that using them
// without configuring a logger never writes to os.Stdout.
type nopLogger struct{}

type nopEvent struct{}

func (nopEvent) Err(err error) IEvent                 { return nopEvent{} }
func (nopEvent) Msg(msg string)                       {}
func (nopEvent) Msgf(format string, v ...interface{}) {}

func (nopLogger) Debug() IEvent        { return nopEvent{} }
func (nopLogger) Info() IEvent         { return nopEvent{} }
func (nopLogger) Warn() IEvent         { return nopEvent{} }
func (nopLogger) Error() IEvent        { return nopEvent{} }
func (nopLogger) Fatal() IEvent        { return nopEvent{} }
func (nopLogger) SetLevel(level Level) {}
func (nopLogger) GetLevel() Level      { return FatalLevel + 1 }

// NopLogger returns an ILogger whose every method is a no-op.
func NopLogger() ILogger { return nopLogger{} }
