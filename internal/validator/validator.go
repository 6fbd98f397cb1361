// Package validator checks a loaded Bundle's structural validity
// without ever erroring for missing resources outright (spec §4.8): a
// dangling context path is a warning, never a failure.
package validator

import (
	"fmt"
	"os"

	"amplifier/internal/bundle"
	"amplifier/internal/bundleerr"
)

// ValidationResult accumulates errors and warnings across a single
// validation pass. Valid flips false the moment any error is added;
// warnings never affect it, the same two-bucket accumulation the
// original's dataclass uses.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// NewValidationResult returns a result that starts valid.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError records message and marks the result invalid.
func (r *ValidationResult) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Valid = false
}

// AddWarning records message without affecting validity.
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// Validator checks Bundle structure per spec §4.8. The zero value is
// ready to use.
type Validator struct{}

// Validate runs every check and returns the accumulated result.
func (Validator) Validate(b *bundle.Bundle) *ValidationResult {
	result := NewValidationResult()

	validateRequiredFields(b, result)
	validateModuleLists(b, result)
	validateSession(b, result)
	validateResources(b, result)

	return result
}

// ValidateOrRaise validates b and returns a *bundleerr.ValidationError
// aggregating every accumulated error, or nil if the bundle is valid.
func (v Validator) ValidateOrRaise(b *bundle.Bundle) error {
	result := v.Validate(b)
	if !result.Valid {
		return bundleerr.NewValidationError(result.Errors)
	}
	return nil
}

func validateRequiredFields(b *bundle.Bundle, result *ValidationResult) {
	if b.Name == "" {
		result.AddError("bundle must have a name")
	}
}

func validateModuleLists(b *bundle.Bundle, result *ValidationResult) {
	validateModuleEntries("providers", b.Providers, result)
	validateModuleEntries("tools", b.Tools, result)
	validateModuleEntries("hooks", b.Hooks, result)
}

func validateModuleEntries(listName string, specs []bundle.ModuleSpec, result *ValidationResult) {
	for i, spec := range specs {
		if spec.Module == "" {
			result.AddError(fmt.Sprintf("%s[%d]: missing required 'module' field", listName, i))
		}
	}
}

func validateSession(b *bundle.Bundle, result *ValidationResult) {
	if len(b.Session) == 0 {
		return
	}

	if orchestrator, ok := b.Session["orchestrator"]; ok {
		if _, isMap := orchestrator.(map[string]any); !isMap {
			if _, isString := orchestrator.(string); !isString {
				result.AddError(fmt.Sprintf("session.orchestrator: must be a string, got %T", orchestrator))
			}
		}
	}

	if sessionContext, ok := b.Session["context"]; ok {
		if _, isMap := sessionContext.(map[string]any); !isMap {
			if _, isString := sessionContext.(string); !isString {
				result.AddError(fmt.Sprintf("session.context: must be a string, got %T", sessionContext))
			}
		}
	}
}

func validateResources(b *bundle.Bundle, result *ValidationResult) {
	for name, agent := range b.Agents {
		if agent == nil {
			result.AddError(fmt.Sprintf("agents.%s: must be a mapping, got nil", name))
		}
	}

	if b.BasePath == "" {
		return
	}
	for name, path := range b.Context {
		if _, err := os.Stat(path); err != nil {
			result.AddWarning(fmt.Sprintf("context.%s: path does not exist: %s", name, path))
		}
	}
}
