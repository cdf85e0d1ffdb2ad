package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
	})
	return instance
}

// ValidateRequest validates a request struct against its validate tags.
func ValidateRequest(req interface{}) error {
	return GetValidator().Struct(req)
}
