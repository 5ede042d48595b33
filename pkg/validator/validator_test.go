package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type testPayload struct {
	Title  string `json:"title" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"oneof=approved pending rejected"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Title:  "Hello",
		Email:  "alice@example.com",
		Status: "pending",
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Title:  "",
		Email:  "invalid",
		Status: "draft",
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundEmail := false
	for _, v := range vErrs {
		if v.Field == "email" {
			foundEmail = true
		}
	}

	if !foundEmail {
		t.Fatal("expected email field to be present in validation errors")
	}

	fields := vErrs.FieldMap()
	if len(fields["status"]) != 1 || fields["status"][0] != "oneof" {
		t.Fatalf("expected status to fail on oneof, got %v", fields["status"])
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("bloggers", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "bloggers"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type custom struct {
		Value string `validate:"bloggers"`
	}

	if err := ValidateStruct(custom{Value: "bloggers"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(custom{Value: "other"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
