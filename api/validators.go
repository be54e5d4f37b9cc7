package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type customTag struct {
	name string
	fn   validator.Func
}

var customTags = []customTag{
	{"city", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseCity(fl.Field().String())
		return ok
	}},
	{"meal", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseMeal(fl.Field().String())
		return ok
	}},
	{"triptype", func(fl validator.FieldLevel) bool {
		return domain.TripType(fl.Field().String()).Valid()
	}},
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the city, meal and triptype tags to gin's validator
// and reports fields under their JSON names. The result of the first call is
// returned on every call.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = registerTags(v, customTags)
	})
	return registerErr
}

func registerTags(v *validator.Validate, tags []customTag) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	var errs []error
	for _, tag := range tags {
		if err := v.RegisterValidation(tag.name, tag.fn); err != nil {
			errs = append(errs, fmt.Errorf("register %q validator: %w", tag.name, err))
		}
	}
	return errors.Join(errs...)
}
