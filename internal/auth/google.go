package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	goption "google.golang.org/api/option"
)

// ErrEmailNotAllowed is returned when a Google account outside the
// household allow-list completes the sign-in flow.
var ErrEmailNotAllowed = errors.New("email not in allow-list")

// GoogleAuthenticator runs the Google sign-in flow and enforces the
// household allow-list. Anyone with a Google account can complete the
// OAuth dance; only listed emails get a session.
type GoogleAuthenticator struct {
	oauth   *oauth2.Config
	allowed map[string]struct{}
}

func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string, allowedEmails []string) *GoogleAuthenticator {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, e := range allowedEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &GoogleAuthenticator{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		allowed: allowed,
	}
}

// AuthURL returns the Google consent page URL for the given state token.
func (a *GoogleAuthenticator) AuthURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for the user's identity and checks the
// allow-list.
func (a *GoogleAuthenticator) Exchange(ctx context.Context, code string) (*Claims, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := oauthapi.NewService(ctx, goption.WithTokenSource(a.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("userinfo missing email")
	}

	if !a.IsAllowed(info.Email) {
		return nil, fmt.Errorf("%w: %s", ErrEmailNotAllowed, info.Email)
	}

	return &Claims{Email: strings.ToLower(info.Email), Name: info.Name}, nil
}

// IsAllowed reports whether an email is on the household allow-list.
// Comparison is case-insensitive.
func (a *GoogleAuthenticator) IsAllowed(email string) bool {
	_, ok := a.allowed[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
