package models

import "github.com/go-playground/validator/v10"

// validate is shared process-wide; validator.Validate caches struct
// metadata, so a single instance is the cheap path.
var validate = validator.New()

// Validate checks the struct-tag rules (required fields, link shape,
// location code length) plus the salary-range invariant the tags can't
// express. The store schema enforces the same rules; failing here drops the
// listing before a round trip to the database.
func (j *Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		return err
	}
	return j.ValidateSalaryRange()
}
