package validators

import (
	"fmt"
	"reflect"
	"strings"

	"poolride/internal/models"
	"poolride/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report errors under the json/form field name clients actually sent.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("time_of_day", validateTimeOfDay)
	validate.RegisterValidation("pool_type", validatePoolType)
	validate.RegisterValidation("pool_status", validatePoolStatus)
	validate.RegisterValidation("gender", validateGender)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the field->message map the API error
// envelope carries.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "numeric":
		return "must contain only digits"
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	case "object_id":
		return "must be a valid object id"
	case "time_of_day":
		return "must be in HH:MM format"
	case "pool_type":
		return "must be one of: open, women-only, community"
	case "pool_status":
		return "must be one of: upcoming, ongoing, completed, cancelled"
	case "gender":
		return "must be one of: male, female, other"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	switch value := fl.Field().Interface().(type) {
	case primitive.ObjectID:
		return !value.IsZero()
	case string:
		_, err := primitive.ObjectIDFromHex(value)
		return err == nil
	default:
		return false
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return utils.IsValidTimeOfDay(fl.Field().String())
}

func validatePoolType(fl validator.FieldLevel) bool {
	switch models.PoolType(fl.Field().String()) {
	case models.PoolTypeOpen, models.PoolTypeWomenOnly, models.PoolTypeCommunity:
		return true
	}
	return false
}

func validatePoolStatus(fl validator.FieldLevel) bool {
	switch models.PoolStatus(fl.Field().String()) {
	case models.PoolStatusUpcoming, models.PoolStatusOngoing, models.PoolStatusCompleted, models.PoolStatusCancelled:
		return true
	}
	return false
}

func validateGender(fl validator.FieldLevel) bool {
	switch models.Gender(fl.Field().String()) {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
		return true
	}
	return false
}
