package inventory

import (
	"errors"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var ErrInvalidDraft = errors.New("invalid inventory item")

// Category is the closed set of inventory categories
type Category string

const (
	CategoryCamera       Category = "camera"
	CategoryNVR          Category = "nvr"
	CategoryCable        Category = "cable"
	CategoryAccessory    Category = "accessory"
	CategoryInstallation Category = "installation"
	CategoryOther        Category = "other"
)

var Categories = []Category{
	CategoryCamera,
	CategoryNVR,
	CategoryCable,
	CategoryAccessory,
	CategoryInstallation,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultUnit is used when a draft leaves the unit empty
const DefaultUnit = "piece"

// Draft is an inventory item before the client assigns its identifier
type Draft struct {
	Name        string   `json:"name" validate:"required"`
	Category    Category `json:"category" validate:"omitempty,category"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Unit        string   `json:"unit"`
	Description string   `json:"description,omitempty"`
}

func (d Draft) normalized() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Unit = strings.TrimSpace(d.Unit)
	if d.Category == "" {
		d.Category = CategoryOther
	}
	if d.Unit == "" {
		d.Unit = DefaultUnit
	}
	return d
}

// NewValidator returns a validator that knows the category tag
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	_ = v.RegisterValidation("category", func(fl validatorv10.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

func validateDraft(v *validatorv10.Validate, d Draft) error {
	if err := v.Struct(d); err != nil {
		var ve validatorv10.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return nil
}
