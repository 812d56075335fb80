package validator

import (
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"
	"tidyslot/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AssignmentValidator struct {
	validate *validator.Validate
}

func NewAssignmentValidator(log *logger.Logger) *AssignmentValidator {
	return &AssignmentValidator{validate: validation.New(log)}
}

func (v *AssignmentValidator) Validate(req *model.AutoAssignRequest) error {
	return validation.Struct(v.validate, req)
}
