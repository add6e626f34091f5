package survey

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

var DefaultSurveyConnectionKeyNames = struct {
	PortalURL string
	Username  string
	Password  string
	Referer   string
}{
	PortalURL: "portalUrl",
	Username:  "username",
	Password:  "password",
	Referer:   "referer",
}

// Credentials are used to sign in to an ArcGIS portal.
// An empty Username means the survey is read anonymously.
type Credentials struct {
	PortalURL string `errorTxt:"ArcGIS portal URL" mandatory:"yes"`
	Username  string
	Password  string
	Referer   string
}

func (c Credentials) String() string {
	return fmt.Sprintf("%v@%v", c.Username, c.PortalURL)
}

// GetMap populates m with the credentials using the keys in DefaultSurveyConnectionKeyNames.
func (c Credentials) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultSurveyConnectionKeyNames.PortalURL] = c.PortalURL
	m[DefaultSurveyConnectionKeyNames.Username] = c.Username
	m[DefaultSurveyConnectionKeyNames.Password] = c.Password
	if c.Referer != "" {
		m[DefaultSurveyConnectionKeyNames.Referer] = c.Referer
	}
	return m
}

// GetCredentials converts generic ConnectionDetails into Credentials, applying the default portal.
func GetCredentials(c *shared.ConnectionDetails) (Credentials, error) {
	if c.Type != "" && c.Type != constants.ConnectionTypeSurvey123 {
		return Credentials{}, fmt.Errorf("connection %q is of type %q, expected %q", c.LogicalName, c.Type, constants.ConnectionTypeSurvey123)
	}
	retval := Credentials{
		PortalURL: c.Data[DefaultSurveyConnectionKeyNames.PortalURL],
		Username:  c.Data[DefaultSurveyConnectionKeyNames.Username],
		Password:  c.Data[DefaultSurveyConnectionKeyNames.Password],
		Referer:   c.Data[DefaultSurveyConnectionKeyNames.Referer],
	}
	retval.applyDefaults()
	if retval.Username != "" && retval.Password == "" {
		return Credentials{}, fmt.Errorf("connection %q has a username but no password", c.LogicalName)
	}
	return retval, nil
}

// Parse applies defaults and checks the portal URL and credentials are usable.
func (c *Credentials) Parse() error {
	c.applyDefaults()
	u, err := url.Parse(c.PortalURL)
	if err != nil {
		return fmt.Errorf("invalid portal URL %q: %w", c.PortalURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("portal URL %q must use http or https", c.PortalURL)
	}
	if c.Username != "" && c.Password == "" {
		return fmt.Errorf("a password is required for user %q", c.Username)
	}
	return nil
}

// GetScheme returns the connection type saved with survey credentials.
func (c *Credentials) GetScheme() (string, error) {
	return constants.ConnectionTypeSurvey123, nil
}

func (c *Credentials) applyDefaults() {
	if c.PortalURL == "" {
		c.PortalURL = constants.DefaultPortalURL
	}
	c.PortalURL = strings.TrimRight(c.PortalURL, "/")
	if c.Referer == "" {
		c.Referer = constants.DefaultPortalReferer
	}
}
