package httpkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cotizador_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func handleErrorResponse(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	if !HandleError(c, err) {
		t.Fatal("expected the error to be handled")
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return rec, body
}

func TestHandleErrorNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if HandleError(c, nil) {
		t.Fatal("expected nil error not to be handled")
	}
}

func TestHandleErrorMapsDomainKind(t *testing.T) {
	rec, body := handleErrorResponse(t, apperr.NotFound("quotation not found"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body.Error != "quotation not found" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestHandleErrorUnwrapsDomainErrors(t *testing.T) {
	wrapped := fmt.Errorf("load quotation: %w", apperr.Conflict("quotation has recorded payments and cannot be deleted"))

	rec, body := handleErrorResponse(t, wrapped)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a wrapped conflict, got %d", rec.Code)
	}
	if body.Error != "quotation has recorded payments and cannot be deleted" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestHandleErrorMasksInfrastructureErrors(t *testing.T) {
	rec, body := handleErrorResponse(t, errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body.Error != "internal error" {
		t.Fatalf("expected the generic message, got %q", body.Error)
	}
}
