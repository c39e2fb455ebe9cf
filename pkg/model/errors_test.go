package model

import "testing"

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrNotFound, Message: "run 'run_123' not found"}
	want := "NOT_FOUND: run 'run_123' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("run", "run_abc")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "run 'run_abc' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "run 'run_abc' not found")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid request",
		FieldError{Field: "quantum", Message: "must be positive"},
		FieldError{Field: "jobs", Message: "required"},
	)
	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{
		Entity: "job",
		ID:     "A",
		From:   "FINISHED",
		To:     "READY",
	}
	want := "invalid job state transition: FINISHED → READY (entity A)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInvariantError(t *testing.T) {
	tests := []struct {
		name string
		err  *InvariantError
		want string
	}{
		{
			"with job",
			&InvariantError{Policy: PolicySJF, Clock: 4, Job: "B", Reason: "dispatched before arrival"},
			"scheduling invariant violated (policy sjf, t=4, job B): dispatched before arrival",
		},
		{
			"without job",
			&InvariantError{Policy: PolicyRR, Clock: 9, Reason: "no future arrival"},
			"scheduling invariant violated (policy rr, t=9): no future arrival",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
