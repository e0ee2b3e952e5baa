// Package primer models the Primer-BLAST design parameters and the primer
// placement ranges derived from a target position.
package primer

import (
	"fmt"
	"strings"
)

// Params holds the tunable Primer-BLAST form parameters for one batch.
// Zero values are never submitted; start from DefaultParams.
type Params struct {
	// PCR product size bounds in base pairs.
	PCRMin int `mapstructure:"pcr_min"`
	PCRMax int `mapstructure:"pcr_max"`

	// Melting temperature settings in degrees Celsius.
	TmMin     float64 `mapstructure:"tm_min"`
	TmOpt     float64 `mapstructure:"tm_opt"`
	TmMax     float64 `mapstructure:"tm_max"`
	TmMaxDiff int     `mapstructure:"tm_max_diff"`

	// Primer oligo length bounds in bases.
	SizeMin int `mapstructure:"size_min"`
	SizeOpt int `mapstructure:"size_opt"`
	SizeMax int `mapstructure:"size_max"`

	// NumReturn is how many primer pairs to request.
	NumReturn int `mapstructure:"num_return"`
	// MaxEndGC caps G/C bases in the 3' end of a primer.
	MaxEndGC int `mapstructure:"max_end_gc"`
	// MaxPolyX caps runs of a single base.
	MaxPolyX int `mapstructure:"max_poly_x"`

	// Extensions widen the search window around the target position.
	ExtensionLeft  int `mapstructure:"extension_left"`
	ExtensionRight int `mapstructure:"extension_right"`
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		PCRMin:         100,
		PCRMax:         1200,
		TmMin:          58.0,
		TmOpt:          60.0,
		TmMax:          62.0,
		TmMaxDiff:      2,
		SizeMin:        18,
		SizeOpt:        20,
		SizeMax:        25,
		NumReturn:      10,
		MaxEndGC:       4,
		MaxPolyX:       4,
		ExtensionLeft:  800,
		ExtensionRight: 800,
	}
}

// ValidationError represents a single parameter validation failure.
type ValidationError struct {
	Field   string // The parameter name (e.g., "pcr_max")
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

// Validate checks the parameter set for invalid values and returns all
// validation errors found.
func (p Params) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, p.validateProduct()...)
	errors = append(errors, p.validateTm()...)
	errors = append(errors, p.validateSize()...)
	errors = append(errors, p.validateMisc()...)

	return errors
}

func (p Params) validateProduct() []ValidationError {
	var errors []ValidationError

	const minProduct = 50
	const maxProduct = 30000

	if p.PCRMin < minProduct || p.PCRMin > maxProduct {
		errors = append(errors, ValidationError{
			Field:   "pcr_min",
			Value:   p.PCRMin,
			Message: fmt.Sprintf("must be between %d and %d", minProduct, maxProduct),
		})
	}
	if p.PCRMax < minProduct || p.PCRMax > maxProduct {
		errors = append(errors, ValidationError{
			Field:   "pcr_max",
			Value:   p.PCRMax,
			Message: fmt.Sprintf("must be between %d and %d", minProduct, maxProduct),
		})
	}
	if p.PCRMax <= p.PCRMin {
		errors = append(errors, ValidationError{
			Field:   "pcr_max",
			Value:   p.PCRMax,
			Message: fmt.Sprintf("must be greater than pcr_min (%d)", p.PCRMin),
		})
	}

	return errors
}

func (p Params) validateTm() []ValidationError {
	var errors []ValidationError

	for field, v := range map[string]float64{"tm_min": p.TmMin, "tm_opt": p.TmOpt, "tm_max": p.TmMax} {
		if v <= 30 || v >= 95 {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   v,
				Message: "must be between 30 and 95 exclusive",
			})
		}
	}
	if p.TmOpt <= p.TmMin {
		errors = append(errors, ValidationError{
			Field:   "tm_opt",
			Value:   p.TmOpt,
			Message: fmt.Sprintf("must be greater than tm_min (%v)", p.TmMin),
		})
	}
	if p.TmMax <= p.TmOpt {
		errors = append(errors, ValidationError{
			Field:   "tm_max",
			Value:   p.TmMax,
			Message: fmt.Sprintf("must be greater than tm_opt (%v)", p.TmOpt),
		})
	}
	if p.TmMaxDiff < 0 || p.TmMaxDiff > 10 {
		errors = append(errors, ValidationError{
			Field:   "tm_max_diff",
			Value:   p.TmMaxDiff,
			Message: "must be between 0 and 10",
		})
	} else if float64(p.TmMaxDiff) > p.TmMax-p.TmMin {
		errors = append(errors, ValidationError{
			Field:   "tm_max_diff",
			Value:   p.TmMaxDiff,
			Message: fmt.Sprintf("cannot exceed the tm range (%v)", p.TmMax-p.TmMin),
		})
	}

	return errors
}

func (p Params) validateSize() []ValidationError {
	var errors []ValidationError

	for field, v := range map[string]int{"size_min": p.SizeMin, "size_opt": p.SizeOpt, "size_max": p.SizeMax} {
		if v < 10 || v > 40 {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   v,
				Message: "must be between 10 and 40",
			})
		}
	}
	if p.SizeOpt < p.SizeMin {
		errors = append(errors, ValidationError{
			Field:   "size_opt",
			Value:   p.SizeOpt,
			Message: fmt.Sprintf("cannot be less than size_min (%d)", p.SizeMin),
		})
	}
	if p.SizeMax < p.SizeOpt {
		errors = append(errors, ValidationError{
			Field:   "size_max",
			Value:   p.SizeMax,
			Message: fmt.Sprintf("cannot be less than size_opt (%d)", p.SizeOpt),
		})
	}

	return errors
}

func (p Params) validateMisc() []ValidationError {
	var errors []ValidationError

	if p.NumReturn < 1 || p.NumReturn > 50 {
		errors = append(errors, ValidationError{
			Field:   "num_return",
			Value:   p.NumReturn,
			Message: "must be between 1 and 50",
		})
	}
	if p.MaxEndGC < 0 || p.MaxEndGC > 5 {
		errors = append(errors, ValidationError{
			Field:   "max_end_gc",
			Value:   p.MaxEndGC,
			Message: "must be between 0 and 5",
		})
	}
	if p.MaxPolyX < 0 || p.MaxPolyX > 10 {
		errors = append(errors, ValidationError{
			Field:   "max_poly_x",
			Value:   p.MaxPolyX,
			Message: "must be between 0 and 10",
		})
	}
	if p.ExtensionLeft < 0 {
		errors = append(errors, ValidationError{
			Field:   "extension_left",
			Value:   p.ExtensionLeft,
			Message: "must be non-negative",
		})
	}
	if p.ExtensionRight < 0 {
		errors = append(errors, ValidationError{
			Field:   "extension_right",
			Value:   p.ExtensionRight,
			Message: "must be non-negative",
		})
	}

	return errors
}
