package bert

import "fmt"

// ConfigError reports an invalid model configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bert: invalid config: %s: %s", e.Field, e.Reason)
}
