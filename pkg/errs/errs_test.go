package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid argument", InvalidArgument("name required"), http.StatusBadRequest},
		{"invalid state", InvalidState("file not trashed"), http.StatusBadRequest},
		{"not found", NotFound("folder %s not found", "abc"), http.StatusNotFound},
		{"unauthorized", Unauthorized("not owner"), http.StatusForbidden},
		{"cycle", CycleDetected("move would create cycle"), http.StatusConflict},
		{"quota", QuotaExceeded("quota exceeded"), http.StatusInsufficientStorage},
		{"storage fault", StorageFault("put blob", errors.New("io error")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrappedChainSurvives(t *testing.T) {
	base := errors.New("disk full")
	err := StorageFault("write object", base)

	if !errors.Is(err, base) {
		t.Error("original error lost from chain")
	}

	wrapped := fmt.Errorf("upload: %w", NotFound("file missing"))
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through extra wrapping")
	}
}

func TestPredicates(t *testing.T) {
	if !IsQuotaExceeded(QuotaExceeded("over limit")) {
		t.Error("IsQuotaExceeded failed")
	}

	if !IsCycleDetected(CycleDetected("cycle")) {
		t.Error("IsCycleDetected failed")
	}

	if IsNotFound(InvalidArgument("bad")) {
		t.Error("predicates should not cross categories")
	}
}
