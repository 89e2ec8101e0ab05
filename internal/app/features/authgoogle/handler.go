// internal/app/features/authgoogle/handler.go
package authgoogle

// Terminology: Student identifiers
//   - StudentID / student_id: Google's stable subject id for the account; it keys
//     profiles, submissions and leaderboard entries.
//   - Email is display data and the staff allow-list key, never an identifier.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/authz"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// StateTTL bounds the sign-in round trip.
const StateTTL = 10 * time.Minute

// StateStore holds one-time OAuth states (store/oauthstate).
type StateStore interface {
	Save(ctx context.Context, state, returnURL string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (returnURL string, ok bool, err error)
}

// Identity is what the sign-in needs from the identity provider.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IdentityFunc exchanges an authorization code for the signed-in identity.
type IdentityFunc func(ctx context.Context, code string) (*Identity, error)

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	StateStore StateStore
	Staff      authz.StaffList
	Audit      *auditlog.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://internhub.example.org/auth/google/callback"

	identify IdentityFunc
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	stateStore StateStore,
	staff authz.StaffList,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		StateStore:   stateStore,
		Staff:        staff,
		Audit:        audit,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
	}
	h.identify = h.googleIdentity
	return h
}

// WithIdentity replaces the code exchange, for tests and local stubs.
func (h *Handler) WithIdentity(fn IdentityFunc) *Handler {
	h.identify = fn
	return h
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.fail(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.fail(w, r, "internal")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, StateTTL); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.fail(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Consumes the state, exchanges the code for the identity and signs the        |
| principal in. Staff are recognised by the email allow-list.                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.fail(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.fail(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Consume(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.fail(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.fail(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.fail(w, r, "invalid_code")
		return
	}

	id, err := h.identify(ctx, code)
	if err != nil {
		h.Log.Error("failed to resolve Google identity", zap.Error(err))
		h.fail(w, r, "token_exchange")
		return
	}
	if id.ID == "" {
		h.Log.Error("Google identity without subject id", zap.String("email", id.Email))
		h.fail(w, r, "user_info")
		return
	}

	role := auth.RoleStudent
	if id.EmailVerified {
		role = h.Staff.RoleFor(id.Email)
	}

	h.signInAndRedirect(w, r, auth.SessionUser{
		ID:      id.ID,
		Name:    id.Name,
		Email:   strings.ToLower(id.Email),
		Picture: id.Picture,
		Role:    role,
	}, returnURL)
}

func (h *Handler) signInAndRedirect(w http.ResponseWriter, r *http.Request, u auth.SessionUser, returnURL string) {
	if _, err := h.SessionMgr.GetSession(r); err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			h.Log.Warn("session cookie invalid, using fresh session", zap.Error(err), zap.String("student_id", u.ID))
		} else {
			h.Log.Error("session store error during login, using fresh session", zap.Error(err), zap.String("student_id", u.ID))
		}
	}

	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("student_id", u.ID))
		h.fail(w, r, "session")
		return
	}

	h.Audit.SignIn(r.Context(), r, u)
	h.Log.Info("signed in via Google OAuth",
		zap.String("student_id", u.ID),
		zap.String("role", u.Role))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/me"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// fail records the failed sign-in and sends the client back to /login with code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, code string) {
	h.Audit.SignInFailed(r.Context(), r, code)
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

// googleIdentity exchanges the code and reads Google's userinfo endpoint.
func (h *Handler) googleIdentity(ctx context.Context, code string) (*Identity, error) {
	cfg := h.oauth2Config()
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := cfg.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info Identity
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
