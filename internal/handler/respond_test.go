package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blip/internal/model"

	"github.com/gorilla/mux"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code model.ErrorCode
		want int
	}{
		{model.CodeValidation, http.StatusBadRequest},
		{model.CodeInvalidCredentials, http.StatusUnauthorized},
		{model.CodeNoSession, http.StatusUnauthorized},
		{model.CodeKeyNotFound, http.StatusNotFound},
		{model.CodeNotRegistered, http.StatusNotFound},
		{model.CodeWalletMismatch, http.StatusConflict},
		{model.CodeOperationInFlight, http.StatusConflict},
		{model.CodeTransactionReverted, http.StatusUnprocessableEntity},
		{model.CodeNetworkUnavailable, http.StatusBadGateway},
		{model.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &model.RevertError{Reason: "already liked"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	var body model.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != string(model.CodeTransactionReverted) {
		t.Errorf("code %q", body.Code)
	}
	if body.Error == "" {
		t.Error("empty error message")
	}
}

func TestWriteErrorUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAvatarEndpoint(t *testing.T) {
	h := NewProfileHandler(nil) // avatar derivation needs no session

	req := httptest.NewRequest(http.MethodGet, "/profile/x/avatar", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"})
	rec := httptest.NewRecorder()
	h.Avatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body model.AvatarResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Style != "big-smile" || body.URL == "" {
		t.Errorf("response %+v", body)
	}
}

func TestAvatarEndpointBadAddress(t *testing.T) {
	h := NewProfileHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/profile/x/avatar", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "nope"})
	rec := httptest.NewRecorder()
	h.Avatar(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	var body model.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != string(model.CodeValidation) {
		t.Errorf("code %q", body.Code)
	}
}

func TestQREndpoint(t *testing.T) {
	h := NewProfileHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/profile/x/qr", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"})
	rec := httptest.NewRecorder()
	h.QR(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body model.QRResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.QR == "" {
		t.Error("empty QR payload")
	}
}
