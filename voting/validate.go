// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/danielhkuo/quick-poll/models"
	"github.com/go-playground/validator/v10"
)

// rule is a validator tag plus the caller-facing message for each tag
// that can fail
type rule struct {
	tag  string
	msgs map[string]string
}

var (
	questionRule = rule{
		tag: fmt.Sprintf("required,max=%d", models.MaxQuestionLength),
		msgs: map[string]string{
			"required": "Question is required.",
			"max":      fmt.Sprintf("Question must be %d characters or less.", models.MaxQuestionLength),
		},
	}
	optionCountRule = rule{
		tag: fmt.Sprintf("required,min=%d,max=%d", models.MinOptions, models.MaxOptions),
		msgs: map[string]string{
			"required": fmt.Sprintf("At least %d options are required.", models.MinOptions),
			"min":      fmt.Sprintf("At least %d options are required.", models.MinOptions),
			"max":      fmt.Sprintf("Maximum %d options allowed.", models.MaxOptions),
		},
	}

	// Checked after blank options are dropped, in this order
	cleanedCountRule = rule{
		tag:  fmt.Sprintf("min=%d", models.MinOptions),
		msgs: map[string]string{"min": fmt.Sprintf("At least %d non-empty options are required.", models.MinOptions)},
	}
	optionLengthRule = rule{
		tag:  fmt.Sprintf("dive,max=%d", models.MaxOptionLength),
		msgs: map[string]string{"max": fmt.Sprintf("Each option must be %d characters or less.", models.MaxOptionLength)},
	}
	uniqueOptionsRule = rule{
		tag:  "unique_fold",
		msgs: map[string]string{"unique_fold": "Duplicate options are not allowed."},
	}
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("unique_fold", uniqueFold)
	return v
}

// uniqueFold rejects slices holding the same string twice, ignoring case
func uniqueFold(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}

	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		key := strings.ToLower(field.Index(i).String())
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// cleanDraft trims the input, validates it and returns what should be
// stored. Blank options are dropped.
func (e *Engine) cleanDraft(question string, options []string) (string, []string, error) {
	question = strings.TrimSpace(question)
	if err := e.check(question, questionRule); err != nil {
		return "", nil, err
	}
	if err := e.check(options, optionCountRule); err != nil {
		return "", nil, err
	}

	cleaned := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	for _, r := range []rule{cleanedCountRule, optionLengthRule, uniqueOptionsRule} {
		if err := e.check(cleaned, r); err != nil {
			return "", nil, err
		}
	}

	return question, cleaned, nil
}

// check applies r to value and translates the first failure
func (e *Engine) check(value any, r rule) error {
	err := e.validate.Var(value, r.tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if msg, ok := r.msgs[verrs[0].Tag()]; ok {
		return invalid(msg)
	}
	return invalid("Invalid poll.")
}
