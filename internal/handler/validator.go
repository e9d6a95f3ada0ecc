package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bloodGroups = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// RegisterValidators attaches custom binding rules to gin's validator.
// Must run before the first request is bound.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("blood_group", validBloodGroup)
	}
}

func validBloodGroup(fl validator.FieldLevel) bool {
	return bloodGroups[fl.Field().String()]
}
