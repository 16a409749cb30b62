package helper

import "github.com/go-playground/validator/v10"

var Validate = validator.New()

// ValidationMessage ambil pesan singkat dari error validator untuk
// response API.
func ValidationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return "Field '" + e.Field() + "' gagal validasi rule '" + e.Tag() + "'"
	}
	return "Invalid request body"
}
