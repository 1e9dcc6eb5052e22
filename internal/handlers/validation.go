package handlers

import (
	"sync"
	"time"

	"cleo_backend/internal/datetransform"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorsOnce sync.Once

// registerValidators adds the iso8601 tag to gin's validator engine.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
			_, err := datetransform.ParseISO(fl.Field().String())
			return err == nil
		})
	})
}

// parseOptionalISO parses a nullable ISO-8601 body field. Nil stays nil.
func parseOptionalISO(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := datetransform.ParseISO(*s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
