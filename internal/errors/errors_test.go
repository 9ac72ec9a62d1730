package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeStandOccupied, "stand 3 already assigned")
	target := New(CodeStandOccupied, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeNotFound, "nope")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "persist assignment", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "persist assignment" {
		t.Fatalf("expected message, got %q", err.Error())
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeSessionFull, "full")); got != CodeSessionFull {
		t.Fatalf("expected CodeSessionFull, got %q", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for plain error, got %q", got)
	}
	wrapped := fmt.Errorf("context: %w", New(CodeDriveNotRunning, "not running"))
	if got := GetCode(wrapped); got != CodeDriveNotRunning {
		t.Fatalf("expected code through wrapping, got %q", got)
	}
}

func TestKindTaxonomy(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
	}{
		{CodeSessionTimetableOutOfOrder, KindValidation},
		{CodeHarvestSpeciesNotPermitted, KindValidation},
		{CodeNotFound, KindNotFound},
		{CodeStandOccupied, KindConflict},
		{CodeDriveAlreadyRunning, KindConflict},
		{CodeDriveNotRunning, KindState},
		{CodeSessionCompleted, KindState},
		{CodeSessionFull, KindCapacity},
		{CodeUnknown, KindUnknown},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.kind {
			t.Fatalf("code %q: expected kind %d, got %d", tt.code, tt.kind, got)
		}
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeSessionInvalidCapacity, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeStandOccupied, codes.AlreadyExists},
		{CodeSessionInvalidTransition, codes.FailedPrecondition},
		{CodeSessionFull, codes.ResourceExhausted},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("code %q: expected grpc code %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestToGRPCStatusCarriesErrorInfo(t *testing.T) {
	err := WithMetadata(CodeStandOccupied, "stand occupied", map[string]string{"stand_id": "s-1"})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", st.Code())
	}
	if st.Message() != "stand occupied" {
		t.Fatalf("expected message, got %q", st.Message())
	}
	if len(st.Details()) == 0 {
		t.Fatal("expected error details")
	}
}
