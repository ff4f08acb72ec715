package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// maxProfileBody bounds how much of a profile response is read.
const maxProfileBody = 1 << 20

// client carries the oauth2 plumbing shared by every provider implementation.
type client struct {
	config     *oauth2.Config
	httpClient *http.Client
	log        *slog.Logger
	kind       string
}

func newClient(kind string, cfg ProviderConfig, endpoint oauth2.Endpoint, defaultScopes []string, opts ...Option) (*client, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	return &client{
		kind: kind,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: o.httpClient,
		log:        o.log,
	}, nil
}

// Name returns the provider identifier.
func (c *client) Name() string {
	return c.kind
}

// AuthCodeURL generates the authorization URL.
func (c *client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (c *client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.Join(ErrTokenExchangeFailed, errors.New("empty authorization code"))
	}

	token, err := c.config.Exchange(c.contextWithHTTPClient(ctx), code)
	if err != nil {
		return nil, errors.Join(ErrTokenExchangeFailed, fmt.Errorf("%s exchange: %w", c.kind, err))
	}
	if token == nil || token.AccessToken == "" {
		return nil, errors.Join(ErrTokenExchangeFailed, fmt.Errorf("%s exchange: response carried no access token", c.kind))
	}

	return token, nil
}

func (c *client) contextWithHTTPClient(ctx context.Context) context.Context {
	if c.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return ctx
}

// getJSON performs a GET authenticated with a bearer header and decodes the
// body into dst. The raw payload is returned alongside for Identity.Raw.
func (c *client) getJSON(ctx context.Context, token *oauth2.Token, endpoint string, dst any) (map[string]any, error) {
	httpClient := c.config.Client(c.contextWithHTTPClient(ctx), token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrProfileFetchFailed, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrProfileFetchFailed, fmt.Errorf("%s profile: %w", c.kind, withoutQuery(err)))
	}
	if resp == nil {
		return nil, errors.Join(ErrProfileFetchFailed, ErrNilResponse)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return nil, errors.Join(ErrProfileFetchFailed, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrProfileFetchFailed, ErrRequestFailed,
			fmt.Errorf("%s profile request failed: status=%d body=%s", c.kind, resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return nil, errors.Join(ErrProfileFetchFailed, ErrDecodeFailed, fmt.Errorf("decode %s profile: %w", c.kind, err))
	}

	var raw map[string]any
	// Array payloads (e.g. GitHub emails) have no raw map form.
	_ = json.Unmarshal(body, &raw)

	return raw, nil
}

// withoutQuery drops the query string from a transport error's URL. Some
// provider APIs take credentials as query parameters and the error text ends
// up in logs.
func withoutQuery(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		u.Fragment = ""
		uerr.URL = u.String()
	} else {
		uerr.URL = "[unparseable url]"
	}
	return err
}

// requireID rejects identities the provider returned without a user id.
func requireID(kind string, ident *Identity) (*Identity, error) {
	if ident.ProviderUserID == "" {
		return nil, errors.Join(ErrProfileFetchFailed, fmt.Errorf("%s profile: missing user id", kind))
	}
	return ident, nil
}
