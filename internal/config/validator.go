package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sim.stagger_min_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBridge()...)
	errors = append(errors, c.validateSim()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateBridge validates the BridgeConfig
func (c *Config) validateBridge() []ValidationError {
	var errors []ValidationError

	const minCapacity = 1
	const maxCapacity = 1024

	if c.Bridge.Capacity < minCapacity {
		errors = append(errors, ValidationError{
			Field:   "bridge.capacity",
			Value:   c.Bridge.Capacity,
			Message: fmt.Sprintf("must be at least %d", minCapacity),
		})
	}
	if c.Bridge.Capacity > maxCapacity {
		errors = append(errors, ValidationError{
			Field:   "bridge.capacity",
			Value:   c.Bridge.Capacity,
			Message: fmt.Sprintf("exceeds maximum of %d", maxCapacity),
		})
	}

	return errors
}

// validateSim validates the SimConfig
func (c *Config) validateSim() []ValidationError {
	var errors []ValidationError

	// Car count bounds match the scenario file limit
	const minCars = 1
	const maxCars = 10000

	if c.Sim.Cars < minCars {
		errors = append(errors, ValidationError{
			Field:   "sim.cars",
			Value:   c.Sim.Cars,
			Message: fmt.Sprintf("must be at least %d", minCars),
		})
	}
	if c.Sim.Cars > maxCars {
		errors = append(errors, ValidationError{
			Field:   "sim.cars",
			Value:   c.Sim.Cars,
			Message: fmt.Sprintf("exceeds maximum of %d", maxCars),
		})
	}

	errors = append(errors, validateDelayMs("sim.stagger", c.Sim.StaggerMinMs, c.Sim.StaggerMaxMs)...)
	errors = append(errors, validateDelayMs("sim.dwell", c.Sim.DwellMinMs, c.Sim.DwellMaxMs)...)

	// MaxInFlight of 0 means unlimited, which is valid
	const maxInFlightLimit = 10000
	if c.Sim.MaxInFlight < 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.max_inflight",
			Value:   c.Sim.MaxInFlight,
			Message: "must be non-negative (0 disables the limit)",
		})
	}
	if c.Sim.MaxInFlight > maxInFlightLimit {
		errors = append(errors, ValidationError{
			Field:   "sim.max_inflight",
			Value:   c.Sim.MaxInFlight,
			Message: fmt.Sprintf("exceeds maximum of %d", maxInFlightLimit),
		})
	}

	return errors
}

// validateDelayMs validates a min/max millisecond pair such as the
// stagger or dwell bounds
func validateDelayMs(fieldPrefix string, minMs, maxMs int) []ValidationError {
	var errors []ValidationError

	// One minute is already glacial for a simulated crossing
	const maxDelayMs = 60000

	if minMs < 0 {
		errors = append(errors, ValidationError{
			Field:   fieldPrefix + "_min_ms",
			Value:   minMs,
			Message: "must be non-negative",
		})
	}
	if maxMs > maxDelayMs {
		errors = append(errors, ValidationError{
			Field:   fieldPrefix + "_max_ms",
			Value:   maxMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDelayMs),
		})
	}
	if minMs >= 0 && maxMs >= 0 && minMs > maxMs {
		errors = append(errors, ValidationError{
			Field:   fieldPrefix + "_min_ms",
			Value:   minMs,
			Message: fmt.Sprintf("must not exceed %s_max_ms (%d)", fieldPrefix, maxMs),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// File path validation - if set, check for invalid characters
	if c.Logging.File != "" {
		path := c.Logging.File

		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "logging.file",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Most filesystems cap paths around 4096
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "logging.file",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	// MaxSizeMB of 0 means rotation is disabled, which is valid
	const maxSizeLimitMB = 1024
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables rotation)",
		})
	}
	if c.Logging.MaxSizeMB > maxSizeLimitMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxSizeLimitMB),
		})
	}

	const maxBackupsLimit = 100
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxBackups > maxBackupsLimit {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: fmt.Sprintf("exceeds maximum of %d", maxBackupsLimit),
		})
	}

	return errors
}
