package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate = validator.New()

func init() {
	// Report errors under the json field names so 422 payloads match the
	// wire representation.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	Validate.RegisterStructValidation(eventConditionalRules, Event{})
}

// eventConditionalRules holds the cross-field requirements that plain tags
// cannot express: location fields keyed on event_type, pricing fields keyed
// on is_paid, and the end-after-start ordering. Evaluated in the same pass
// as the tag rules.
func eventConditionalRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Event)

	if validTime(e.StartTime) && validTime(e.EndTime) && e.EndTime <= e.StartTime {
		sl.ReportError(e.EndTime, "end_time", "EndTime", "gtfield", "start_time")
	}

	switch e.EventType {
	case TypeVirtual:
		if e.MeetingLink == "" {
			sl.ReportError(e.MeetingLink, "meeting_link", "MeetingLink", "required_if", "event_type")
		}
	case TypePhysical:
		if e.VenueName == "" {
			sl.ReportError(e.VenueName, "venue_name", "VenueName", "required_if", "event_type")
		}
	case TypeHybrid:
		if e.MeetingLink == "" {
			sl.ReportError(e.MeetingLink, "meeting_link", "MeetingLink", "required_if", "event_type")
		}
		if e.VenueName == "" {
			sl.ReportError(e.VenueName, "venue_name", "VenueName", "required_if", "event_type")
		}
	}

	if e.IsPaid {
		if e.Price == nil {
			sl.ReportError(e.Price, "price", "Price", "required_if", "is_paid")
		}
		if e.Currency == "" {
			sl.ReportError(e.Currency, "currency", "Currency", "required_if", "is_paid")
		}
	}
}

func validTime(s string) bool {
	return Validate.Var(s, "datetime=15:04") == nil
}

// ValidateStruct runs the declarative schema and converts failures into the
// per-field ValidationError taxonomy. Unexpected validator failures pass
// through untouched.
func ValidateStruct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	ve := NewValidationError()
	for _, fe := range verrs {
		ve.Add(fe.Field(), fieldMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return ve
}

type tagParam struct {
	tag   string
	param string
}

func varTags(err error) []tagParam {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []tagParam{{tag: "invalid"}}
	}
	out := make([]tagParam, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, tagParam{tag: fe.Tag(), param: fe.Param()})
	}
	return out
}

func fieldMessage(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required", "required_if":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s must not exceed %s characters.", label, param)
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", label, param)
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", label, param)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", label, strings.Join(strings.Fields(param), ", "))
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", label)
	case "timezone":
		return fmt.Sprintf("The %s must be a valid timezone name.", label)
	case "gtfield":
		return fmt.Sprintf("The %s must be after the %s.", label, strings.ReplaceAll(param, "_", " "))
	case "datetime":
		if param == TimeLayout {
			return fmt.Sprintf("The %s must be in 24-hour format (HH:mm).", label)
		}
		return fmt.Sprintf("The %s must be a valid date (YYYY-MM-DD).", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
