package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, no data source)
	ExitDataError   = 3 // Data error (document could not be loaded or normalized)
)
