package user

import (
	"errors"
	"fmt"
	"strings"

	"product_api/internal/binding"

	"github.com/go-playground/validator/v10"
)

type fieldRule struct {
	path string
	tag  string
}

var (
	nameRule     = fieldRule{path: "name", tag: "required"}
	emailRule    = fieldRule{path: "email", tag: "required,email"}
	passwordRule = fieldRule{path: "password", tag: "required,min=6"}
)

var ruleMessages = map[string]string{
	"name.required":     "name is required",
	"email.required":    "email is required",
	"email.email":       "email is invalid",
	"password.required": "password is required",
	"password.min":      "password must be at least 6 characters",
}

var validate = validator.New()

type FieldViolation struct {
	Path string
	Msg  string
}

// ValidationError reports every rejected field. It reaches the client
// through the error handler as a 500, the way store-side schema failures do.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Msg))
	}
	return "User validation failed: " + strings.Join(parts, ", ")
}

func check(rule fieldRule, value string, violations []FieldViolation) []FieldViolation {
	err := validate.Var(value, rule.tag)
	if err == nil {
		return violations
	}

	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if m, ok := ruleMessages[rule.path+"."+verrs[0].Tag()]; ok {
			msg = m
		}
	}
	return append(violations, FieldViolation{Path: rule.path, Msg: msg})
}

func (in CreateInput) Validate() error {
	var violations []FieldViolation
	violations = check(nameRule, in.Name, violations)
	violations = check(emailRule, in.Email, violations)
	violations = check(passwordRule, in.Password, violations)

	if len(violations) > 0 {
		return &ValidationError{Fields: violations}
	}
	return nil
}

// Validate checks only the fields the caller supplied.
func (in UpdateInput) Validate() error {
	var violations []FieldViolation
	if in.Name != nil {
		violations = check(nameRule, *in.Name, violations)
	}
	if in.Email != nil {
		violations = check(emailRule, *in.Email, violations)
	}
	if in.Password != nil {
		violations = check(passwordRule, *in.Password, violations)
	}

	if len(violations) > 0 {
		return &ValidationError{Fields: violations}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ParseCreateInput(raw map[string]any) CreateInput {
	return CreateInput{
		Name:     binding.String(raw["name"]),
		Email:    normalizeEmail(binding.String(raw["email"])),
		Password: binding.String(raw["password"]),
	}
}

func ParseUpdateInput(raw map[string]any) UpdateInput {
	var in UpdateInput
	if v, ok := raw["name"]; ok {
		s := binding.String(v)
		in.Name = &s
	}
	if v, ok := raw["email"]; ok {
		s := normalizeEmail(binding.String(v))
		in.Email = &s
	}
	if v, ok := raw["password"]; ok {
		s := binding.String(v)
		in.Password = &s
	}
	return in
}
