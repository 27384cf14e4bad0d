package flix

// LoggerProvider hands out named loggers. The glog logger from
// github.com/goliatone/go-logger satisfies this out of the box.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// ResolveLogger resolves the logger a component should use: an explicit
// logger wins, then a provider-scoped logger, then the package default.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	if logger != nil {
		return provider, logger
	}

	if provider != nil {
		if l := provider.GetLogger(name); l != nil {
			return provider, l
		}
	}

	return provider, defLogger{}
}
