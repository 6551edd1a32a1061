package dashboard

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationResult lists every problem found; Valid is true when none was.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// animalRules is the shape checked before an animal is submitted.
type animalRules struct {
	Name            string   `validate:"required"`
	Type            string   `validate:"required"`
	Weight          *float64 `validate:"omitempty,gte=0"`
	MilkProduction  *float64 `validate:"omitempty,gte=0"`
	FeedConsumption *float64 `validate:"omitempty,gte=0"`
}

var animalMessages = map[string]string{
	"Name":            "Name is required",
	"Type":            "Animal type is required",
	"Weight":          "Weight must not be negative",
	"MilkProduction":  "Milk production must not be negative",
	"FeedConsumption": "Feed consumption must not be negative",
}

// ValidateAnimal checks a submitted animal: name and type are required,
// weight, milk production and feed consumption must not be negative.
func ValidateAnimal(patch models.AnimalPatch) ValidationResult {
	rules := animalRules{
		Weight:          patch.Weight,
		MilkProduction:  patch.MilkProduction,
		FeedConsumption: patch.FeedConsumption,
	}
	if patch.Name != nil {
		rules.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Type != nil {
		rules.Type = *patch.Type
	}

	err := validate.Struct(rules)
	if err == nil {
		return newResult(nil)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newResult([]string{err.Error()})
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := animalMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		msgs = append(msgs, msg)
	}
	return newResult(msgs)
}

// ValidateDateRange checks two ISO dates and that start is not after end.
func ValidateDateRange(start, end string) ValidationResult {
	var errs []string
	startDate, err := reporting.ParseDate(start)
	if err != nil {
		errs = append(errs, "Start date is invalid")
	}
	endDate, err2 := reporting.ParseDate(end)
	if err2 != nil {
		errs = append(errs, "End date is invalid")
	}
	if err == nil && err2 == nil && reporting.Day(startDate).After(reporting.Day(endDate)) {
		errs = append(errs, "Start date must be before or equal to end date")
	}
	return newResult(errs)
}
