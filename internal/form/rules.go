package form

import (
	"strconv"
	"strings"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

// Length limits of task fields.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 255
	MaxTagLength         = 30
)

// FutureDate accepts YYYY-MM-DD dates after today's date.
func FutureDate(now func() time.Time) Rule {
	return Rule{
		Check: func(s string) bool {
			d, err := service.ParseDate(s)
			if err != nil || d.IsZero() {
				return false
			}
			return service.DateOf(now()).Before(d)
		},
		Message: "validation.futureDateRequired",
	}
}

// TaskRules validates the create and edit task form.
func TaskRules(now func() time.Time) Ruleset {
	return Ruleset{
		"title":       {Required: true, Rules: []Rule{MaxLength(MaxTitleLength)}},
		"description": {Rules: []Rule{MaxLength(MaxDescriptionLength)}},
		"dueDate":     {Required: true, Rules: []Rule{FutureDate(now)}},
	}
}

// LoginRules validates the login form.
func LoginRules() Ruleset {
	return Ruleset{
		"email":    {Required: true, Rules: []Rule{Email()}},
		"password": {Required: true},
	}
}

// RegisterRules validates the registration form.
func RegisterRules() Ruleset {
	return Ruleset{
		"username": {Required: true, Rules: []Rule{MinLength(3), MaxLength(50)}},
		"email":    {Required: true, Rules: []Rule{Email()}},
		"password": {Required: true, Rules: []Rule{Password()}},
	}
}

// ForgotPasswordRules validates the forgot-password form.
func ForgotPasswordRules() Ruleset {
	return Ruleset{
		"email": {Required: true, Rules: []Rule{Email()}},
	}
}

// ResetPasswordRules validates the reset-password form.
func ResetPasswordRules() Ruleset {
	return Ruleset{
		"token":    {Required: true},
		"password": {Required: true, Rules: []Rule{Password()}},
	}
}

// NormalizeTags trims tags, drops empty ones and duplicates, and keeps the
// first-seen order. A tag longer than MaxTagLength is an error.
func (v *Validator) NormalizeTags(raw []string) ([]string, *apperr.Error) {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	limit := MaxLength(MaxTagLength)
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if !limit.Check(tag) {
			msg := v.t(limit.Message, map[string]string{
				"field": v.t("fields.tags", nil),
				"max":   strconv.Itoa(MaxTagLength),
			})
			return nil, apperr.NewValidation(msg, "tags", tag)
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}

// SplitTags splits a comma-separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
