package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
	"github.com/angelmondragon/salesreport/pkg/logger"
	"github.com/angelmondragon/salesreport/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsPipelineCodes(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "invalid input",
			err:         pkgerrors.New(pkgerrors.CodeInvalidInput, "sellers must not be empty").WithDetails(map[string]any{"collection": "sellers"}),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "sellers must not be empty",
			wantDetails: true,
		},
		{
			name:        "unknown seller",
			err:         pkgerrors.New(pkgerrors.CodeUnknownSeller, "unknown seller \"x\"").WithDetails(map[string]any{"seller_id": "x"}),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "unknown seller \"x\"",
			wantDetails: true,
		},
		{
			name:        "missing policy hides message",
			err:         pkgerrors.New(pkgerrors.CodeMissingPolicy, "calculate_bonus is nil").WithDetails(map[string]any{"policy": "calculate_bonus"}),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "report policy not configured",
		},
		{
			name:        "untyped error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d but got %d", tt.wantStatus, w.Code)
			}
			var body types.ErrorEnvelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error envelope: %v", err)
			}
			if body.Error.Message != tt.wantMessage {
				t.Fatalf("unexpected message %q", body.Error.Message)
			}
			if (body.Error.Details != nil) != tt.wantDetails {
				t.Fatalf("details presence mismatch: %v", body.Error.Details)
			}
		})
	}
}

func TestWriteErrorLogsByStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{Output: &buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.New(pkgerrors.CodeNotFound, "report run not found"))
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "request.rejected") {
		t.Fatalf("client errors should log at warn: %s", buf.String())
	}

	buf.Reset()
	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("conn refused"), "store report run"))
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "conn refused") {
		t.Fatalf("server errors should log at error with cause: %s", buf.String())
	}
}

func TestWriteErrorEchoesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Request-Id", "req-42")
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "report run not found"))

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.RequestID != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", body.Error.RequestID)
	}
}
