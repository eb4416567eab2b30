package application

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/room-booking/internal/phone"
	"github.com/example/room-booking/internal/scheduler"
)

var passcodePattern = regexp.MustCompile(`^[0-9]{4}$`)

// reservationForm mirrors the create form; field tags name the keys reported
// in ValidationError.FieldErrors.
type reservationForm struct {
	RoomID    int64  `field:"room_id" validate:"gt=0"`
	UserName  string `field:"user_name" validate:"required"`
	UserPhone string `field:"user_phone" validate:"required,min=8,max=20"`
	Passcode  string `field:"password" validate:"passcode"`
}

type lookupForm struct {
	UserPhone string `field:"user_phone" validate:"required,min=8"`
	Passcode  string `field:"password" validate:"passcode"`
}

type inputValidator struct {
	validate *validator.Validate
}

func newInputValidator() *inputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("field"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("passcode", func(fl validator.FieldLevel) bool {
		return passcodePattern.MatchString(fl.Field().String())
	})
	return &inputValidator{validate: v}
}

func (v *inputValidator) check(form any) *ValidationError {
	vErr := &ValidationError{}
	err := v.validate.Struct(form)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("form", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "room_id":
		return "room is required"
	case "user_name":
		return "name is required"
	case "user_phone":
		switch fe.Tag() {
		case "max":
			return "phone must be at most 20 characters"
		default:
			return "phone must be at least 8 characters"
		}
	case "password":
		return "passcode must be 4 digits"
	}
	return fe.Error()
}

func (v *inputValidator) validateCreate(params CreateReservationParams) *ValidationError {
	vErr := v.check(reservationForm{
		RoomID:    params.RoomID,
		UserName:  strings.TrimSpace(params.UserName),
		UserPhone: strings.TrimSpace(params.UserPhone),
		Passcode:  params.Passcode,
	})

	if _, ok := vErr.FieldErrors["user_phone"]; !ok && phone.Normalize(params.UserPhone) == "" {
		vErr.add("user_phone", "phone must contain digits")
	}

	vErr.merge(validateInterval(params.StartTime, params.EndTime))
	return vErr
}

func (v *inputValidator) validateLookup(params FindReservationsParams) *ValidationError {
	vErr := v.check(lookupForm{
		UserPhone: strings.TrimSpace(params.UserPhone),
		Passcode:  params.Passcode,
	})
	if _, ok := vErr.FieldErrors["user_phone"]; !ok && phone.Normalize(params.UserPhone) == "" {
		vErr.add("user_phone", "phone must contain digits")
	}
	return vErr
}

func validateInterval(start, end time.Time) *ValidationError {
	vErr := &ValidationError{}
	if start.IsZero() {
		vErr.add("start_time", "start is required")
	}
	if end.IsZero() {
		vErr.add("end_time", "end is required")
	}
	if !start.IsZero() && !end.IsZero() && !(scheduler.Interval{Start: start, End: end}).Valid() {
		vErr.add("end_time", "start must be before end")
	}
	return vErr
}
