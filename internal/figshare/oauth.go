package figshare

import (
	"golang.org/x/oauth2"
)

const (
	// AuthorizeURL is the page where users grant an application access to their account.
	AuthorizeURL = "https://figshare.com/account/applications/authorize"

	// TokenURL exchanges an authorization code for an access token.
	TokenURL = "https://api.figshare.com/v2/token"
)

// Endpoint is the OAuth2 endpoint of figshare.com.
var Endpoint = oauth2.Endpoint{
	AuthURL:   AuthorizeURL,
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// OAuth2Config returns the OAuth2 configuration for a registered application.
// The resulting access token is used as Config.Token.
func OAuth2Config(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     Endpoint,
		Scopes:       []string{"all"},
	}
}
