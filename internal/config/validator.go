package config

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "tools.motif_bins")
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

// Validate checks the Config for invalid values and returns all validation
// errors found. Presence of required keys is checked by Load; Validate only
// looks at values.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateInputs()...)
	errors = append(errors, c.validateTools()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateInputs validates the pipeline keys
func (c *Config) validateInputs() []ValidationError {
	var errors []ValidationError

	t := c.MotifThreshold
	if math.IsNaN(t) || t <= 0 || t > 1 {
		errors = append(errors, ValidationError{
			Field:   "motif_threshold",
			Value:   t,
			Message: "must be a p-value in (0, 1]",
		})
	}

	// The final network is written inside OUTPUT_DIR, so it must be a
	// plain file name.
	if c.NetworkFile != "" && filepath.Base(c.NetworkFile) != c.NetworkFile {
		errors = append(errors, ValidationError{
			Field:   "filename_netprophet2_network",
			Value:   c.NetworkFile,
			Message: "must be a file name without directories",
		})
	}

	return errors
}

// validateTools validates the ToolsConfig
func (c *Config) validateTools() []ValidationError {
	var errors []ValidationError

	interpreters := []struct {
		field string
		value string
	}{
		{"tools.rscript", c.Tools.Rscript},
		{"tools.python", c.Tools.Python},
		{"tools.perl", c.Tools.Perl},
		{"tools.fimo", c.Tools.Fimo},
		{"tools.src_dir", c.Tools.SrcDir},
	}
	for _, it := range interpreters {
		if strings.TrimSpace(it.value) == "" {
			errors = append(errors, ValidationError{
				Field:   it.field,
				Value:   it.value,
				Message: "cannot be empty",
			})
		}
	}

	const maxMotifBins = 1000
	if c.Tools.MotifBins < 2 {
		errors = append(errors, ValidationError{
			Field:   "tools.motif_bins",
			Value:   c.Tools.MotifBins,
			Message: "must be at least 2",
		})
	}
	if c.Tools.MotifBins > maxMotifBins {
		errors = append(errors, ValidationError{
			Field:   "tools.motif_bins",
			Value:   c.Tools.MotifBins,
			Message: fmt.Sprintf("exceeds maximum of %d", maxMotifBins),
		})
	}

	if c.Tools.FireK < 1 {
		errors = append(errors, ValidationError{
			Field:   "tools.fire_k",
			Value:   c.Tools.FireK,
			Message: "must be positive",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
