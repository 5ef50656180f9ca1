package core

// Logger is any service that can report application events, optionally
// attaching extra context (error values, the acting teacher account, etc.)
// via variadic args.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
