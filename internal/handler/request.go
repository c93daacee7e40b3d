package handler

import (
	"AuthTokens_Service/internal/model"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// decodeCredentials accepts a JSON body or an urlencoded form.
func decodeCredentials(writer http.ResponseWriter, request *http.Request) (CredentialsRequest, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := request.ParseForm(); err != nil {
			return CredentialsRequest{}, fmt.Errorf("%w: form: %v", model.ErrValidation, err)
		}
		return CredentialsRequest{
			Email:    request.PostForm.Get("email"),
			Password: request.PostForm.Get("password"),
		}, nil
	}

	var credentials CredentialsRequest
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		return CredentialsRequest{}, fmt.Errorf("%w: json: %v", model.ErrValidation, err)
	}

	return credentials, nil
}
