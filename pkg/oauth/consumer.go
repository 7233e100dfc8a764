package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gooauth "github.com/garyburd/go-oauth/oauth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Flickr services root the OAuth endpoints live under.
const DefaultBaseURL = "https://api.flickr.com/services"

// OutOfBand is the callback used when the user copies the verifier by hand.
const OutOfBand = "oob"

// Permissions accepted by the authorize endpoint.
const (
	PermRead   = "read"
	PermWrite  = "write"
	PermDelete = "delete"
)

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	// Key and Secret are the application's API key and secret (REQUIRED)
	Key    string
	Secret string

	// BaseURL replaces DefaultBaseURL, e.g. for a proxy
	BaseURL string

	// Store receives the access token after ExchangeVerifier. Optional.
	Store TokenStore

	// Service is the Store slot; defaults to DefaultService
	Service string

	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Consumer signs requests with the application credentials and performs
// the request-token / authorize / access-token exchange.
type Consumer struct {
	client     gooauth.Client
	httpClient *http.Client
	store      TokenStore
	service    string
	logger     zerolog.Logger
}

// NewConsumer creates a Consumer for cfg.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if cfg.Key == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("api key and secret are required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	service := cfg.Service
	if service == "" {
		service = DefaultService
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := log.With().Str("component", "flickr-oauth").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "flickr-oauth").Logger()
	}

	return &Consumer{
		client: gooauth.Client{
			Credentials:                   gooauth.Credentials{Token: cfg.Key, Secret: cfg.Secret},
			TemporaryCredentialRequestURI: base + "/oauth/request_token",
			ResourceOwnerAuthorizationURI: base + "/oauth/authorize",
			TokenRequestURI:               base + "/oauth/access_token",
		},
		httpClient: httpClient,
		store:      cfg.Store,
		service:    service,
		logger:     logger,
	}, nil
}

// Key returns the application's API key.
func (c *Consumer) Key() string {
	return c.client.Credentials.Token
}

// SignForm adds the oauth_* parameters and signature to form for a request
// to rawURL. An anonymous token signs with the consumer credentials only.
// rawURL must not carry a query string; every parameter belongs in form.
func (c *Consumer) SignForm(token Token, method, rawURL string, form url.Values) error {
	var creds *gooauth.Credentials
	if !token.IsAnonymous() {
		creds = &gooauth.Credentials{Token: token.Token, Secret: token.Secret}
	}
	if err := c.client.SignForm(creds, method, rawURL, form); err != nil {
		return fmt.Errorf("sign form: %w", err)
	}
	return nil
}

// AuthorizationURL requests temporary credentials and returns the URL the
// user must visit together with the temporary token. An empty callbackURL
// selects the out-of-band flow.
func (c *Consumer) AuthorizationURL(ctx context.Context, perm, callbackURL string) (string, Token, error) {
	if err := validatePerm(perm); err != nil {
		return "", Token{}, err
	}
	if callbackURL == "" {
		callbackURL = OutOfBand
	}

	temp, err := c.client.RequestTemporaryCredentialsContext(c.requestContext(ctx), callbackURL, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Temporary credential request failed")
		return "", Token{}, fmt.Errorf("%w: request token: %w", ErrTokenRequest, err)
	}

	authURL := c.client.AuthorizationURL(temp, url.Values{"perms": {perm}})
	c.logger.Debug().Str("perm", perm).Msg("Issued authorization URL")

	return authURL, Token{Token: temp.Token, Secret: temp.Secret}, nil
}

// ExchangeVerifier trades the temporary token and verifier for an access
// token and saves it to the configured store.
func (c *Consumer) ExchangeVerifier(ctx context.Context, temp Token, verifier string) (Token, error) {
	if verifier == "" {
		return Token{}, fmt.Errorf("%w: empty verifier", ErrTokenRequest)
	}
	creds, values, err := c.client.RequestTokenContext(c.requestContext(ctx),
		&gooauth.Credentials{Token: temp.Token, Secret: temp.Secret}, verifier)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Access token request failed")
		return Token{}, fmt.Errorf("%w: access token: %w", ErrTokenRequest, err)
	}

	token := Token{Token: creds.Token, Secret: creds.Secret}
	for key := range values {
		if key == "oauth_token" || key == "oauth_token_secret" {
			continue
		}
		if token.Extra == nil {
			token.Extra = make(map[string]string)
		}
		token.Extra[key] = values.Get(key)
	}

	if c.store != nil {
		if err := c.store.StoreToken(ctx, c.service, token); err != nil {
			return token, fmt.Errorf("store access token: %w", err)
		}
	}

	c.logger.Info().
		Str("user_nsid", token.Extra["user_nsid"]).
		Str("username", token.Extra["username"]).
		Msg("Access token obtained")
	return token, nil
}

// requestContext carries the consumer's HTTP client to go-oauth.
func (c *Consumer) requestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, gooauth.HTTPClient, c.httpClient)
}

func validatePerm(perm string) error {
	switch perm {
	case PermRead, PermWrite, PermDelete:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPerm, perm)
	}
}
