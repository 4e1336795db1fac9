// Package validator wraps go-playground validation behind a small handle the
// handlers share.
package validator

import "github.com/go-playground/validator/v10"

// Validator checks request DTOs against their validate tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct reports the first set of tag violations on s, or nil.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}
