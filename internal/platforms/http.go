package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/music-exporter/internal/shared"
	"golang.org/x/oauth2"
)

const userAgent = "music-exporter/1.0"

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// doJSON sends req and decodes a successful JSON response into out.
//
// Network failures and non-2xx statuses become transport errors; undecodable bodies become parse errors.
func doJSON(client *http.Client, req *http.Request, platform string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return shared.TransportError(fmt.Sprintf("%s request to %s failed", platform, req.URL.Path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return shared.TransportError(
			fmt.Sprintf("%s API error: status %d", platform, resp.StatusCode),
			errors.New(string(body)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return shared.ParseError(fmt.Sprintf("failed to decode %s response", platform), err)
	}

	return nil
}

// exchange trades an authorization code for a token using the given client for the token request.
func exchange(ctx context.Context, config *oauth2.Config, client *http.Client, code, platform string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, shared.AuthorizationError(fmt.Sprintf("%s rejected the authorization code", platform), err)
		}
		return nil, shared.TransportError(fmt.Sprintf("%s token exchange failed", platform), err)
	}

	return token, nil
}

// authorizeCode sends the user through the OAuth2 consent screen and returns the resulting code.
func authorizeCode(ctx context.Context, codes CodeSource, config *oauth2.Config, platform string) (string, error) {
	if codes == nil {
		return "", shared.ConfigError(platform+" needs an authorization code source", nil)
	}

	code, err := codes.Code(ctx, config.AuthCodeURL(""))
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", shared.AuthorizationError(platform+" authorization returned an empty code", nil)
	}

	return code, nil
}

func notAuthorized(platform string) error {
	return shared.AuthorizationError(platform+" client is not authorized: call Authorize first", nil)
}
