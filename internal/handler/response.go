package handler

import (
	"AuthTokens_Service/internal/model"
	"AuthTokens_Service/internal/pkg/log"
	"encoding/json"
	"errors"
	"net/http"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"accesstoken"`
}

type LoginResponse struct {
	AccessToken string `json:"accesstoken"`
	Email       string `json:"email"`
}

type ProtectedResponse struct {
	Data string `json:"data"`
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}

// writeError is the single place where domain errors become HTTP statuses.
func writeError(writer http.ResponseWriter, request *http.Request, err error) {
	status, message := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, model.ErrValidation):
		status, message = http.StatusBadRequest, "invalid email or password"
	case errors.Is(err, model.ErrAlreadyExists):
		status, message = http.StatusConflict, "user already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, model.ErrAccessDenied):
		status, message = http.StatusUnauthorized, "unauthorized"
	default:
		log.From(request.Context()).Error("request_failed", "err", err)
	}

	writeJSON(writer, status, ErrorResponse{Error: message})
}
