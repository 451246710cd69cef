package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LogValidationErrors logs every problem contained in err, which is typically returned from a Validate method.
func LogValidationErrors(err error) {
	if err == nil {
		return
	}
	var validationErrors validator.ValidationErrors
	var merr *multierror.Error
	switch {
	case errors.As(err, &validationErrors):
		for _, err := range validationErrors {
			fieldName := stripPrefix(err.Namespace())
			tag := err.Tag()
			switch tag {
			case "required":
				log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
			default:
				log.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
			}
		}
	case errors.As(err, &merr):
		for _, err := range merr.Errors {
			log.Errorf("ConfigError: %s", err)
		}
	default:
		log.Errorf("ConfigError: %s", err)
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
