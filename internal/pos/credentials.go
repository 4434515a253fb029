package pos

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"posbridge/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report credential keys, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodeCredentials(p domain.POSProvider, creds map[string]string, out any) error {
	if err := mapstructure.Decode(creds, out); err != nil {
		return domain.NewPosIntegrationError(p, fmt.Errorf("decode credentials: %w", err))
	}
	return nil
}

func validateCredentials(p domain.POSProvider, creds any) error {
	err := validate.Struct(creds)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewPosIntegrationError(p, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fe.Field()+" is required")
		case "url":
			problems = append(problems, fe.Field()+" must be a valid URL")
		default:
			problems = append(problems, fe.Field()+" failed "+fe.Tag())
		}
	}
	return domain.NewPosIntegrationError(p, fmt.Errorf("invalid credentials: %s", strings.Join(problems, ", ")))
}

// parseCredentials decodes the credential map into out and validates it.
func parseCredentials(p domain.POSProvider, creds map[string]string, out any) error {
	if err := decodeCredentials(p, creds, out); err != nil {
		return err
	}
	return validateCredentials(p, out)
}
