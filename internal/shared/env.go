package shared

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable read by the exporter.
const EnvPrefix = "MUSIC_EXPORTER_"

// DefaultEnvFile is loaded when no --env-file is given. Its absence is not an error.
const DefaultEnvFile = ".env"

// Credential describes one configurable secret, where it is read from and whether a platform needs it.
type Credential struct {
	Label    string
	Env      string
	Value    *string
	Required bool
}

// LoadEnvFile loads KEY=value pairs from path into the process environment without overriding variables already set.
//
// A missing file is tolerated only when optional is true.
func LoadEnvFile(path string, optional bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return ConfigError("failed to load env file "+path, err)
	}
	return nil
}

// SaveEnvFile merges values into the env file at path, creating it when absent.
//
// Existing keys not named in values are kept.
func SaveEnvFile(path string, values map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return ConfigError("failed to read env file "+path, err)
		}
		env = map[string]string{}
	}

	maps.Copy(env, values)

	if err := godotenv.Write(env, path); err != nil {
		return ConfigError("failed to write env file "+path, err)
	}
	return nil
}

// CredentialSlots returns the credential slots of a platform, keyed by its lowercase name.
func (c *Config) CredentialSlots(platform string) []Credential {
	creds := &c.Credentials
	switch strings.ToLower(platform) {
	case "deezer":
		return []Credential{
			{"Deezer cookie", EnvPrefix + "DEEZER_COOKIE", &creds.Deezer.Cookie, true},
			{"Deezer user id", EnvPrefix + "DEEZER_USER_ID", &creds.Deezer.UserID, true},
		}
	case "spotify":
		return []Credential{
			{"Spotify client id", EnvPrefix + "SPOTIFY_ID_CLIENT", &creds.Spotify.ClientID, true},
			{"Spotify client secret", EnvPrefix + "SPOTIFY_ID_CLIENT_SECRET", &creds.Spotify.ClientSecret, true},
		}
	case "youtube":
		return []Credential{
			{"YouTube client id", EnvPrefix + "YOUTUBE_ID_CLIENT", &creds.YouTube.ClientID, true},
			{"YouTube client secret", EnvPrefix + "YOUTUBE_ID_CLIENT_SECRET", &creds.YouTube.ClientSecret, true},
			{"YouTube API key", EnvPrefix + "YOUTUBE_API_KEY", &creds.YouTube.APIKey, true},
			{"YouTube playlist id", EnvPrefix + "YOUTUBE_PLAYLIST_ID", &creds.YouTube.PlaylistID, false},
		}
	default:
		return nil
	}
}

// ApplyEnv overrides credentials with non-empty environment values. lookup defaults to [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, platform := range []string{"deezer", "spotify", "youtube"} {
		for _, cred := range c.CredentialSlots(platform) {
			if v, ok := lookup(cred.Env); ok && strings.TrimSpace(v) != "" {
				*cred.Value = strings.TrimSpace(v)
			}
		}
	}
}

// MissingCredentials lists the required credentials of platform that are still empty.
func (c *Config) MissingCredentials(platform string) []Credential {
	var missing []Credential
	for _, cred := range c.CredentialSlots(platform) {
		if cred.Required && strings.TrimSpace(*cred.Value) == "" {
			missing = append(missing, cred)
		}
	}
	return missing
}

// Prompter asks for values on an interactive reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a [Prompter] reading answers from r and writing questions to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Ask writes the label and reads one trimmed line.
func (p *Prompter) Ask(label string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s: ", label); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", ConfigError("no value entered for "+label, err)
	}
	return strings.TrimSpace(line), nil
}

// FillMissing prompts for every missing required credential of platform.
func (c *Config) FillMissing(platform string, p *Prompter) error {
	for _, cred := range c.MissingCredentials(platform) {
		value, err := p.Ask(fmt.Sprintf("%s (%s)", cred.Label, cred.Env))
		if err != nil {
			return err
		}
		if value == "" {
			return ConfigError("missing "+cred.Label, nil)
		}
		*cred.Value = value
	}
	return nil
}

// RequireCredentials returns a [ConfigError] naming the first missing required credential of platform.
func (c *Config) RequireCredentials(platform string) error {
	if missing := c.MissingCredentials(platform); len(missing) > 0 {
		return ConfigError(fmt.Sprintf("missing %s, set %s or add it to the config file", missing[0].Label, missing[0].Env), nil)
	}
	return nil
}
