// Package form validates user input field by field. A Validator is pure:
// it maps field values to errors, and a form is submittable exactly when
// that map holds no error.
package form

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"taskflow/internal/apperr"
	"taskflow/internal/classify"
)

// Rule is a check applied to a non-empty value.
type Rule struct {
	Check   func(value string) bool
	Message string // localization key
	Min     int
	Max     int
}

// Field lists the checks for one field.
type Field struct {
	Required bool
	Rules    []Rule
}

// Ruleset maps field names to their checks.
type Ruleset map[string]Field

// Values maps field names to raw input.
type Values map[string]string

// Errors maps every validated field to its error, or nil when it passed.
type Errors map[string]*apperr.Error

// IsValid reports whether no field has an error.
func (e Errors) IsValid() bool {
	for _, err := range e {
		if err != nil {
			return false
		}
	}
	return true
}

// First returns the error of the alphabetically first failing field, or
// nil.
func (e Errors) First() *apperr.Error {
	for _, field := range slices.Sorted(maps.Keys(e)) {
		if e[field] != nil {
			return e[field]
		}
	}
	return nil
}

// Validator checks values against a Ruleset and localizes the messages.
type Validator struct {
	t     classify.TranslateFunc
	rules Ruleset
}

// New creates a Validator.
func New(t classify.TranslateFunc, rules Ruleset) *Validator {
	return &Validator{t: t, rules: rules}
}

// ValidateField checks one value. Fields without rules always pass.
func (v *Validator) ValidateField(field, value string) *apperr.Error {
	spec, ok := v.rules[field]
	if !ok {
		return nil
	}

	label := v.t("fields."+field, nil)
	if strings.TrimSpace(value) == "" {
		if spec.Required {
			return apperr.NewValidation(v.t("validation.required", map[string]string{"field": label}), field, value)
		}
		return nil
	}

	for _, rule := range spec.Rules {
		if rule.Check(value) {
			continue
		}
		vars := map[string]string{"field": label}
		if rule.Min > 0 {
			vars["min"] = strconv.Itoa(rule.Min)
		}
		if rule.Max > 0 {
			vars["max"] = strconv.Itoa(rule.Max)
		}
		return apperr.NewValidation(v.t(rule.Message, vars), field, value)
	}
	return nil
}

// ValidateForm checks every field of the ruleset.
func (v *Validator) ValidateForm(values Values) Errors {
	errs := make(Errors, len(v.rules))
	for field := range v.rules {
		errs[field] = v.ValidateField(field, values[field])
	}
	return errs
}

// IsValid reports whether values pass every rule.
func (v *Validator) IsValid(values Values) bool {
	return v.ValidateForm(values).IsValid()
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email accepts addresses of the form local@domain.tld.
func Email() Rule {
	return Rule{Check: emailPattern.MatchString, Message: "validation.invalidEmail"}
}

// MinLength requires at least n characters.
func MinLength(n int) Rule {
	return Rule{
		Check:   func(s string) bool { return len([]rune(s)) >= n },
		Message: "validation.minLength",
		Min:     n,
	}
}

// MaxLength allows at most n characters.
func MaxLength(n int) Rule {
	return Rule{
		Check:   func(s string) bool { return len([]rune(s)) <= n },
		Message: "validation.maxLength",
		Max:     n,
	}
}

// Password requires eight characters with a lower case letter, an upper
// case letter and a digit.
func Password() Rule {
	return Rule{
		Check: func(s string) bool {
			if len(s) < 8 {
				return false
			}
			var lower, upper, digit bool
			for _, r := range s {
				switch {
				case r >= 'a' && r <= 'z':
					lower = true
				case r >= 'A' && r <= 'Z':
					upper = true
				case r >= '0' && r <= '9':
					digit = true
				}
			}
			return lower && upper && digit
		},
		Message: "validation.invalidPassword",
	}
}
