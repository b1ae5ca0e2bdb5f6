package core

// Logger is any leveled logger that can also report to an external tracker.
// extra args may include an error, a map of extra data or the acting manager.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
