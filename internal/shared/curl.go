// Utilities for reading a browser session out of a copied cURL command.
package shared

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
	curlDataRe   = regexp.MustCompile(`(?:--data\S*|-d)\s+(?:'[^']*'|"[^"]*")`)
	curlURLRe    = regexp.MustCompile(`'(https?://[^']+)'|"(https?://[^"]+)"|(https?://[^\s'"]+)`)
)

// CurlRequest is the part of a "Copy as cURL" command needed to replay a logged-in session.
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ReadCurl reads a cURL command from path, or from stdin when path is "-".
func ReadCurl(path string, stdin io.Reader) (*CurlRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, ConfigError("failed to read curl command", err)
	}
	return ParseCurl(string(data))
}

// ParseCurl extracts the URL, headers and cookie of a cURL command.
//
// Header names are lowercased. A -b cookie wins over a Cookie header.
func ParseCurl(command string) (*CurlRequest, error) {
	command = strings.ReplaceAll(command, "\\\r\n", " ")
	command = strings.ReplaceAll(command, "\\\n", " ")
	command = strings.ReplaceAll(command, "^\r\n", " ")

	req := &CurlRequest{Headers: map[string]string{}}

	bare := curlDataRe.ReplaceAllString(curlCookieRe.ReplaceAllString(curlHeaderRe.ReplaceAllString(command, ""), ""), "")
	if m := curlURLRe.FindStringSubmatch(bare); m != nil {
		req.URL = firstGroup(m)
	}

	for _, m := range curlHeaderRe.FindAllStringSubmatch(command, -1) {
		key, value, ok := strings.Cut(firstGroup(m), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "cookie" {
			req.Cookie = value
			continue
		}
		req.Headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(command); m != nil {
		req.Cookie = strings.TrimSpace(firstGroup(m))
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, ConfigError("no headers found in curl command", nil)
	}
	return req, nil
}

// CookieValue returns the value of one cookie, or "" when absent.
func (c *CurlRequest) CookieValue(name string) string {
	for part := range strings.SplitSeq(c.Cookie, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && key == name {
			return value
		}
	}
	return ""
}

// DeezerSession returns the cookie header to replay against Deezer.
//
// Only the arl cookie identifies the session; the rest of the browser jar is dropped.
func (c *CurlRequest) DeezerSession() (string, error) {
	arl := c.CookieValue("arl")
	if arl == "" {
		return "", ConfigError("no arl cookie in curl command, copy a request made while logged in to deezer.com", nil)
	}
	return fmt.Sprintf("arl=%s", arl), nil
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
