package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "profile not found",
			},
			want: "profile not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestInvalidCredentials_Message(t *testing.T) {
	err := InvalidCredentials()
	if err.Code != ErrCodeInvalidCredentials {
		t.Errorf("InvalidCredentials().Code = %v", err.Code)
	}
	want := "Invalid credentials. Please check your identifier and password."
	if err.Message != want {
		t.Errorf("InvalidCredentials().Message = %q, want %q", err.Message, want)
	}
}

func TestConstructorCodes(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"not found", NotFound("x"), ErrCodeNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict},
		{"validation", Validation("x"), ErrCodeValidation},
		{"internal", Internal("x"), ErrCodeInternal},
		{"backend unavailable", BackendUnavailable(cause), ErrCodeBackendUnavailable},
		{"malformed response", MalformedResponse(cause), ErrCodeMalformedResponse},
		{"role lookup failed", RoleLookupFailed(cause), ErrCodeRoleLookupFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("identifier", "identifier is required")
	if err.Field != "identifier" {
		t.Errorf("Field = %q", err.Field)
	}
	if GetField(err) != "identifier" {
		t.Errorf("GetField() = %q", GetField(err))
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(cause, ErrCodeTimeout, "auth backend timed out")
	if err.Code != ErrCodeTimeout {
		t.Errorf("Code = %v", err.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause with errors.Is")
	}
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("verify credentials: %w", InvalidCredentials())
	if !IsInvalidCredentials(wrapped) {
		t.Error("IsInvalidCredentials should see through fmt.Errorf wrapping")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound should not match a credentials error")
	}

	if !IsBackendUnavailable(BackendUnavailable(errors.New("x"))) {
		t.Error("IsBackendUnavailable mismatch")
	}
	if !IsMalformedResponse(MalformedResponse(errors.New("x"))) {
		t.Error("IsMalformedResponse mismatch")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("plain errors should not match any predicate")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(Conflict("x")) != ErrCodeConflict {
		t.Error("GetCode should return the AppError code")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode should be empty for non-AppErrors")
	}
}
