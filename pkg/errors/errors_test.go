package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		exit      int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, exit: 2, publicMsg: "validation failed", detailsOK: true},
		{code: CodeAuth, exit: 3, publicMsg: "authentication failed"},
		{code: CodeUnauthorized, exit: 4, publicMsg: "please sign in"},
		{code: CodeNotFound, exit: 5, publicMsg: "resource not found"},
		{code: CodeConflict, exit: 6, publicMsg: "operation already in progress", retryable: true},
		{code: CodePersistence, exit: 7, publicMsg: "local storage unavailable", retryable: true, detailsOK: true},
		{code: CodeInternal, exit: 1, publicMsg: "internal error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.ExitCode != tt.exit {
			t.Fatalf("code %s expected exit %d got %d", tt.code, tt.exit, meta.ExitCode)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.ExitCode != 1 {
		t.Fatalf("expected internal exit code, got %d", meta.ExitCode)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodePersistence, cause, "write cart")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "PERSISTENCE_ERROR: write cart: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	sentinel := New(CodeUnauthorized, "not authenticated")
	wrapped := fmt.Errorf("add to cart: %w", New(CodeUnauthorized, "not authenticated"))
	if !stdErrors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped coded error to match sentinel")
	}
	if stdErrors.Is(wrapped, New(CodeUnauthorized, "other")) {
		t.Fatalf("different messages must not match")
	}
	if !HasCode(wrapped, CodeUnauthorized) {
		t.Fatalf("HasCode should see through fmt wrapping")
	}
	if HasCode(stdErrors.New("plain"), CodeUnauthorized) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no entry")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpIncludesChainAndPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "kv_records_pkey", TableName: "kv_records", Message: "duplicate key value"}
	err := Wrap(CodePersistence, pgErr, "write cart")

	d := Dump(err)
	if d.Code != CodePersistence {
		t.Fatalf("expected persistence code, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
	if d.PGCode != "23505" || d.PGTable != "kv_records" {
		t.Fatalf("postgres details missing: %+v", d)
	}
	if got := Dump(nil); got.TopMessage != "" {
		t.Fatalf("nil error should dump empty")
	}
}
