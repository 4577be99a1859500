package config

// MissingError reports required configuration that was absent at startup.
// Callers should refuse to start rather than guess a value.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + e.Key
}
