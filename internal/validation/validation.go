package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/kairix/todo/internal/types"
)

// MsgEmpty is the message for a required text field that is empty or
// whitespace-only.
const MsgEmpty = "cannot be empty"

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Errors is a list of field failures usable as a single error value.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// AddAll appends every error in errs.
func (c *Collector) AddAll(errs []ValidationError) {
	c.errors = append(c.errors, errs...)
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// Err returns the accumulated errors as an error, or nil.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return Errors(c.errors)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
	// Report JSON names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct runs the struct-tag rules of v and converts failures to
// ValidationErrors.
func Struct(v any) []ValidationError {
	return translate(validate.Struct(v), "")
}

// Var runs a single tag rule against value, reporting failures under field.
func Var(field string, value any, tag string) []ValidationError {
	return translate(validate.Var(value, tag), field)
}

func translate(err error, field string) []ValidationError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: field, Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fieldPath(fe.Namespace())
		} else if fe.Field() != "" && strings.Contains(fe.Field(), "[") {
			name = field + fe.Field()[strings.Index(fe.Field(), "["):]
		}
		out = append(out, ValidationError{Field: name, Message: message(fe)})
	}
	return out
}

// fieldPath strips the root struct name from a validator namespace,
// "NewTask.tags[1]" -> "tags[1]".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return MsgEmpty
	case "max":
		return fmt.Sprintf("exceeds maximum length of %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: MsgEmpty,
		}
	}
	return nil
}

// validateText applies the encoding rules shared by every stored string.
func validateText(c *Collector, field, value string) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
}

// ValidateNewTask checks a task create request.
func ValidateNewTask(t types.NewTask) []ValidationError {
	var c Collector
	c.AddAll(Struct(t))
	validateText(&c, "title", t.Title)
	if t.AdditionalDetails != nil {
		validateText(&c, "additional_details", *t.AdditionalDetails)
	}
	for i, name := range t.Tags {
		validateText(&c, fmt.Sprintf("tags[%d]", i), name)
	}
	return c.Errors()
}

// ValidateTaskPatch checks the fields present in a partial task update.
// An explicit null title is rejected like an empty one.
func ValidateTaskPatch(p types.TaskPatch) []ValidationError {
	var c Collector
	if p.Title.Set {
		if p.Title.Null {
			c.Add(&ValidationError{Field: "title", Message: MsgEmpty})
		} else {
			c.AddAll(Var("title", p.Title.Value, "notblank,max=500"))
			validateText(&c, "title", p.Title.Value)
		}
	}
	if p.Completed.Set && p.Completed.Null {
		c.Add(&ValidationError{Field: "completed", Message: "must be a boolean"})
	}
	if p.AdditionalDetails.Set && !p.AdditionalDetails.Null {
		c.AddAll(Var("additional_details", p.AdditionalDetails.Value, "max=10000"))
		validateText(&c, "additional_details", p.AdditionalDetails.Value)
	}
	if p.Tags.Set && !p.Tags.Null {
		c.AddAll(ValidateTagNames("tags", p.Tags.Value))
	}
	return c.Errors()
}

// ValidateTagNames checks a list of tag names as used in task payloads.
func ValidateTagNames(field string, names []string) []ValidationError {
	var c Collector
	for i, name := range names {
		f := fmt.Sprintf("%s[%d]", field, i)
		c.AddAll(Var(f, name, "notblank,max=100"))
		validateText(&c, f, name)
	}
	return c.Errors()
}

// ValidateNewTag checks a tag create request.
func ValidateNewTag(t types.NewTag) []ValidationError {
	var c Collector
	c.AddAll(Struct(t))
	validateText(&c, "name", t.Name)
	return c.Errors()
}

// ValidateTagPatch checks a partial tag update.
func ValidateTagPatch(p types.TagPatch) []ValidationError {
	if !p.Name.Set {
		return nil
	}
	if p.Name.Null {
		return []ValidationError{{Field: "name", Message: MsgEmpty}}
	}
	var c Collector
	c.AddAll(Var("name", p.Name.Value, "notblank,max=100"))
	validateText(&c, "name", p.Name.Value)
	return c.Errors()
}

// ValidateNewReminder checks a reminder create request.
func ValidateNewReminder(r types.NewReminder) []ValidationError {
	return Struct(r)
}

// ValidateReminderPatch checks a partial reminder update.
func ValidateReminderPatch(p types.ReminderPatch) []ValidationError {
	var c Collector
	if p.RemindAt.Set && p.RemindAt.Null {
		c.Add(&ValidationError{Field: "remind_at", Message: MsgEmpty})
	}
	if p.Completed.Set && p.Completed.Null {
		c.Add(&ValidationError{Field: "completed", Message: "must be a boolean"})
	}
	return c.Errors()
}
