package handler

import (
	"encoding/json"
	"net/http"

	"blip/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	code := model.CodeFor(err)
	writeJSON(w, statusFor(code), model.ErrorResponse{
		Error: err.Error(),
		Code:  string(code),
	})
}

// statusFor maps taxonomy codes onto HTTP statuses. Reverted transactions are
// 422: the request was well-formed and delivered, the contract said no.
func statusFor(code model.ErrorCode) int {
	switch code {
	case model.CodeValidation:
		return http.StatusBadRequest
	case model.CodeInvalidCredentials, model.CodeNoSession:
		return http.StatusUnauthorized
	case model.CodeKeyNotFound, model.CodeNotRegistered:
		return http.StatusNotFound
	case model.CodeWalletMismatch, model.CodeOperationInFlight:
		return http.StatusConflict
	case model.CodeTransactionReverted:
		return http.StatusUnprocessableEntity
	case model.CodeNetworkUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
