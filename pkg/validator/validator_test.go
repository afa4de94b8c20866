package validator

import (
	"strings"
	"testing"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := registerPayload{
		Name:     "Alice",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pass1234",
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	payload := registerPayload{
		Name:     "Alice",
		Username: "al",
		Email:    "not-an-email",
		Password: "short",
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	fe, ok := err.(FieldErrors)
	if !ok {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if len(fe) != 3 {
		t.Fatalf("expected 3 failures, got %d: %v", len(fe), fe)
	}
	if !strings.Contains(err.Error(), "username failed on min=3") {
		t.Fatalf("expected json field names in message, got %q", err.Error())
	}
}
