// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// messages for the error codes the sign-in flow redirects with.
var messages = map[string]string{
	"google_not_configured": "Google sign-in is not configured.",
	"google_denied":         "Google sign-in was cancelled.",
	"invalid_state":         "The sign-in link expired. Please try again.",
	"invalid_code":          "Google did not return an authorization code.",
	"token_exchange":        "Could not complete Google sign-in.",
	"user_info":             "Could not read your Google account.",
	"session":               "Could not start your session.",
	"internal":              "Something went wrong. Please try again.",
}

// Handler describes how to sign in. There is one identity provider; the
// response points the client at it.
type Handler struct {
	GoogleEnabled bool
}

func NewHandler(googleEnabled bool) *Handler {
	return &Handler{GoogleEnabled: googleEnabled}
}

type provider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type response struct {
	SignedIn  bool       `json:"signed_in"`
	Providers []provider `json:"providers"`
	Error     string     `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "/me")

	resp := response{Providers: []provider{}}
	if _, ok := auth.CurrentUser(r); ok {
		resp.SignedIn = true
	}
	if h.GoogleEnabled {
		resp.Providers = append(resp.Providers, provider{
			Name: "google",
			URL:  "/auth/google?return=" + url.QueryEscape(ret),
		})
	}
	if code := query.Get(r, "error"); code != "" {
		msg, ok := messages[code]
		if !ok {
			code, msg = "internal", messages["internal"]
		}
		resp.Error, resp.Message = code, msg
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
