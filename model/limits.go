package model

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// LimitPolicy caps how many questions of a type a template may hold.
// Types missing from the table are unlimited.
var LimitPolicy = map[QuestionType]int{
	TypeText:     4,
	TypeTextarea: 4,
	TypeNumber:   4,
	TypeCheckbox: 4,
}

// LimitedTypes fixes the order in which limit errors are reported.
var LimitedTypes = []QuestionType{TypeText, TypeTextarea, TypeNumber, TypeCheckbox}

func Limit(t QuestionType) (max int, limited bool) {
	max, limited = LimitPolicy[t]
	return
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func Invalid(msgs ...string) ValidationResult {
	return ValidationResult{IsValid: false, Errors: msgs}
}

// Err folds every message into a single error, or nil when valid.
func (r ValidationResult) Err() error {
	var result *multierror.Error
	for _, msg := range r.Errors {
		result = multierror.Append(result, errors.New(msg))
	}
	return result.ErrorOrNil()
}

func CountByType(questions []Question) map[QuestionType]int {
	counts := make(map[QuestionType]int)
	for _, q := range questions {
		counts[q.Type]++
	}
	return counts
}

// ValidateLimits reports every type that exceeds its cap, not just the first.
func ValidateLimits(questions []Question) ValidationResult {
	counts := CountByType(questions)

	var errs []string
	for _, t := range LimitedTypes {
		max := LimitPolicy[t]
		if n := counts[t]; n > max {
			errs = append(errs, fmt.Sprintf("Maximum %d questions allowed for type: %s (currently %d)", max, t, n))
		}
	}
	if len(errs) > 0 {
		return Invalid(errs...)
	}
	return Valid()
}

func CanAdd(questions []Question, t QuestionType) bool {
	max, limited := Limit(t)
	if !limited {
		return true
	}
	return CountByType(questions)[t] < max
}
