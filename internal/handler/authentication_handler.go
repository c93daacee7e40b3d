package handler

import (
	"AuthTokens_Service/internal/pkg/log"
	"AuthTokens_Service/internal/service"
	"context"
	"net/http"
	"time"
)

const defaultRequestTimeout = 3 * time.Second

type AuthenticationHandler struct {
	*service.AuthenticationService
	Cookie         CookieConfig
	RequestTimeout time.Duration
}

func NewAuthenticationHandler(authenticationService *service.AuthenticationService, cookie CookieConfig, requestTimeout time.Duration) *AuthenticationHandler {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &AuthenticationHandler{
		AuthenticationService: authenticationService,
		Cookie:                cookie,
		RequestTimeout:        requestTimeout,
	}
}

func (handler *AuthenticationHandler) Ping(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = writer.Write([]byte("pong"))
}

// Register creates a user from {email, password}.
// 201 on success, 400 on invalid input, 409 when the email is taken.
func (handler *AuthenticationHandler) Register(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	credentials, err := decodeCredentials(writer, request)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	if _, err := handler.AuthenticationService.Register(ctx, credentials.Email, credentials.Password); err != nil {
		writeError(writer, request, err)
		return
	}

	writeJSON(writer, http.StatusCreated, MessageResponse{Message: "User Created"})
}

// Login returns the access token in the body and sets the renewal token
// cookie. Failed logins set no cookie.
func (handler *AuthenticationHandler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	credentials, err := decodeCredentials(writer, request)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	session, err := handler.AuthenticationService.Login(ctx, credentials.Email, credentials.Password)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	handler.Cookie.set(writer, session.RenewalToken.Value)
	writeJSON(writer, http.StatusOK, LoginResponse{
		AccessToken: session.AccessToken.Value,
		Email:       session.Email,
	})
}

// RefreshToken rotates the session carried by the renewal cookie. A missing
// or rejected cookie is not an error: the answer is an empty access token.
func (handler *AuthenticationHandler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	ctx = service.WithClientAddr(ctx, request.RemoteAddr)

	result, err := handler.AuthenticationService.Refresh(ctx, handler.Cookie.read(request))
	if err != nil {
		writeError(writer, request, err)
		return
	}

	if !result.Active {
		writeJSON(writer, http.StatusOK, AccessTokenResponse{AccessToken: ""})
		return
	}

	handler.Cookie.set(writer, result.Session.RenewalToken.Value)
	writeJSON(writer, http.StatusOK, AccessTokenResponse{AccessToken: result.Session.AccessToken.Value})
}

// Logout always clears the renewal cookie.
func (handler *AuthenticationHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), handler.RequestTimeout)
	defer cancel()

	if err := handler.AuthenticationService.Logout(ctx, handler.Cookie.read(request)); err != nil {
		log.From(ctx).Error("logout_revoke_failed", "err", err)
	}

	handler.Cookie.clear(writer)
	writeJSON(writer, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Protected is served behind security.JWTMiddleware.
func (handler *AuthenticationHandler) Protected(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, ProtectedResponse{Data: "This is protected data."})
}
