package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/auth"
)

const stateCookie = "gastos_oauth_state"

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		AuthEnabled bool
		Denied      bool
	}{
		AuthEnabled: s.authn != nil,
		Denied:      r.URL.Query().Get("denied") == "1",
	}

	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleAuthRedirect sends the browser to the Google consent page with a
// fresh state token bound to a short-lived cookie.
func (s *Server) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	if s.authn == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state := newStateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.authn.AuthURL(state), http.StatusSeeOther)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.authn == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		slog.WarnContext(r.Context(), "OAuth state mismatch")
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	// State is single use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	claims, err := s.authn.Exchange(r.Context(), code)
	if err != nil {
		if errors.Is(err, auth.ErrEmailNotAllowed) {
			slog.WarnContext(r.Context(), "Sign-in rejected, email not allowed", "error", err)
			http.Redirect(w, r, "/login?denied=1", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "OAuth exchange failed", "error", err)
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateSessionToken(claims.Email, claims.Name, s.sessionSecret, s.sessionTTL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to sign session token", "error", err)
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, auth.NewSessionCookie(token, int(s.sessionTTL.Seconds())))
	slog.InfoContext(r.Context(), "User signed in", "email", claims.Email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func newStateToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("st_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
