package state

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	ErrInvalidTool  = errors.New("invalid tool")
	ErrInvalidShape = errors.New("invalid shape type")
	ErrInvalidColor = errors.New("color must be a 6-digit hex value like #1A2B3C")
	ErrInvalidSize  = errors.New("brush size out of range")
)

const hex6Tag = "hex6"

var hex6Regex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// Validator returns the shared validator with the board's custom tags and
// english messages registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation(hex6Tag, func(fl validator.FieldLevel) bool {
			return hex6Regex.MatchString(fl.Field().String())
		})

		_en := en.New()
		translator, _ = ut.New(_en, _en).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)
		_ = validate.RegisterTranslation(hex6Tag, translator,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " must be a color like #1A2B3C"
			})
	})
	return validate
}

// Explain turns validation errors into one readable sentence per field.
// Other errors are returned as their message.
func Explain(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	Validator()
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}

// ValidateColor checks a #RRGGBB color.
func ValidateColor(hex string) error {
	if err := Validator().Var(hex, "required,"+hex6Tag); err != nil {
		return errors.Wrapf(ErrInvalidColor, "%q", hex)
	}
	return nil
}

// ValidateSize checks a brush width against the configured maximum.
func ValidateSize(px, max int) error {
	if err := Validator().Var(px, fmt.Sprintf("gte=1,lte=%d", max)); err != nil {
		return errors.Wrapf(ErrInvalidSize, "%d not in [1, %d]", px, max)
	}
	return nil
}

// Validate checks the style with the given maximum width.
func (s StrokeStyle) Validate(maxWidth int) error {
	if err := ValidateColor(s.Color); err != nil {
		return err
	}
	return ValidateSize(s.Width, maxWidth)
}
