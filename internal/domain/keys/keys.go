// Package keys holds viper key name constants.
package keys

// Terminal key names.
const (
	DataDir        = "data-dir"
	DebugLevel     = "debug"
	MaxConcurrent  = "max-concurrent"
	StallTimeout   = "stall-timeout"
	ServerPort     = "port"
	BrowserCookies = "browser-cookies"
	RemoteSearch   = "remote"
)
