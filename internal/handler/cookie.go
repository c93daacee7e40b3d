package handler

import (
	"net/http"
	"strings"
)

// CookieConfig describes the cookie that carries the renewal token. It is
// HttpOnly and scoped to Path so the browser only sends it to the refresh
// endpoint.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     "refreshtoken",
		Path:     "/refresh_token",
		SameSite: http.SameSiteLaxMode,
	}
}

// ParseSameSite maps "lax", "strict" and "none" to http.SameSite; anything
// else yields Lax.
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (config CookieConfig) renewalCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     config.Name,
		Value:    value,
		Path:     config.Path,
		Domain:   config.Domain,
		Secure:   config.Secure,
		HttpOnly: true,
		SameSite: config.SameSite,
	}
}

func (config CookieConfig) set(writer http.ResponseWriter, renewalToken string) {
	http.SetCookie(writer, config.renewalCookie(renewalToken))
}

func (config CookieConfig) clear(writer http.ResponseWriter) {
	cookie := config.renewalCookie("")
	cookie.MaxAge = -1
	http.SetCookie(writer, cookie)
}

// read returns the renewal token, or "" when the cookie is absent.
func (config CookieConfig) read(request *http.Request) string {
	cookie, err := request.Cookie(config.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
