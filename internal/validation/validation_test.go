package validation

import (
	"errors"
	"testing"
)

type signup struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "abc", ConfirmPassword: "abd"})
	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %v", err)
	}
	want := map[string]string{
		"username":        "Please enter this field",
		"email":           "Invalid email",
		"password":        "must be at least 6 characters long",
		"confirmPassword": "must match password",
	}
	for field, msg := range want {
		if verrs[field] != msg {
			t.Fatalf("%s: expected %q, got %q", field, msg, verrs[field])
		}
	}
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Username: "ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
