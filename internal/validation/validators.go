package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/benvon/team-builder/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance. Field names in errors use JSON tags.
	Validate *validator.Validate

	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError describes the first invalid field of a request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// teamRequestMessages maps "<field>.<tag>" to the message shown to the user
var teamRequestMessages = map[string]string{
	"pokemonNames.min":      "At least one Pokemon is required",
	"pokemonNames.required": "Pokemon names must not be empty",
	"battleFormat.required": "Battle format is required",
	"playstyles.min":        "At least one playstyle is required",
	"playstyles.max":        "At most 3 playstyles are allowed",
	"playstyles.required":   "Playstyles must not be empty",
}

// NormalizeTeamRequest trims whitespace and control characters from every string in the request
func NormalizeTeamRequest(req *models.TeamRequest) {
	if req == nil {
		return
	}
	for i, name := range req.PokemonNames {
		req.PokemonNames[i] = SanitizeText(name)
	}
	req.BattleFormat = SanitizeText(req.BattleFormat)
	for i, style := range req.Playstyles {
		req.Playstyles[i] = SanitizeText(style)
	}
}

// ValidateTeamRequest checks the shape of a team request. It returns a *ValidationError
// for the first violated constraint.
func ValidateTeamRequest(req *models.TeamRequest) error {
	if req == nil {
		return &ValidationError{Field: "body", Message: "Request body is required"}
	}

	err := Validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate team request: %w", err)
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	// dive errors carry an index: pokemonNames[3]
	if base, _, ok := strings.Cut(field, "["); ok {
		field = base
	}
	if msg, ok := teamRequestMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
