package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/stream"
	"golang.org/x/net/context/ctxhttp"
)

// Config holds the settings used to download survey submissions.
type Config struct {
	Credentials
	Layer              int // index of the layer in the feature service that holds the submissions.
	PageSize           int // max records requested per query.
	TokenExpiryMinutes int
	HttpClient         *http.Client
}

// Client downloads Survey123 submissions via the ArcGIS REST API.
type Client struct {
	log   logger.Logger
	cfg   Config
	token string
}

// NewClient applies defaults to cfg and returns a new Client.
func NewClient(log logger.Logger, cfg Config) *Client {
	cfg.Credentials.applyDefaults()
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.DefaultSurveyPageSize
	}
	if cfg.TokenExpiryMinutes <= 0 {
		cfg.TokenExpiryMinutes = constants.DefaultTokenExpiryMinutes
	}
	if cfg.HttpClient == nil {
		cfg.HttpClient = &http.Client{Timeout: constants.DefaultHttpTimeoutSeconds * time.Second}
	}
	return &Client{log: log, cfg: cfg}
}

// Download signs in, finds the feature layer behind the survey and returns every submission as a Record.
// Fields of type esriFieldTypeDate are returned as UTC time.Time values.
func (c *Client) Download(ctx context.Context, surveyID string) ([]stream.Record, error) {
	if strings.TrimSpace(surveyID) == "" {
		return nil, errors.New("missing survey id")
	}
	if err := c.signIn(ctx); err != nil {
		return nil, err
	}
	serviceURL, err := c.GetServiceURL(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	layerURL := fmt.Sprintf("%v/%v", strings.TrimRight(serviceURL, "/"), c.cfg.Layer)
	c.log.Debug("survey ", surveyID, " uses feature layer ", layerURL)
	return c.queryAll(ctx, layerURL)
}

// signIn fetches a token unless the portal is read anonymously.
func (c *Client) signIn(ctx context.Context) error {
	if c.cfg.Username == "" {
		c.log.Debug("no username supplied; reading survey anonymously")
		return nil
	}
	form := url.Values{
		"username":   {c.cfg.Username},
		"password":   {c.cfg.Password},
		"referer":    {c.cfg.Referer},
		"client":     {"referer"},
		"expiration": {strconv.Itoa(c.cfg.TokenExpiryMinutes)},
		"f":          {"json"},
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.PortalURL+"/sharing/rest/generateToken", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "error creating token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp tokenResponse
	if err = c.do(ctx, req, &resp); err != nil {
		return errors.Wrapf(err, "error signing in to %v as %v", c.cfg.PortalURL, c.cfg.Username)
	}
	if resp.Error != nil {
		return errors.Wrapf(resp.Error, "error signing in to %v as %v", c.cfg.PortalURL, c.cfg.Username)
	}
	if resp.Token == "" {
		return fmt.Errorf("no token returned by %v", c.cfg.PortalURL)
	}
	c.token = resp.Token
	c.log.Info("signed in to ", c.cfg.PortalURL, " as ", c.cfg.Username)
	return nil
}

// GetServiceURL returns the URL of the feature service that stores the survey's submissions.
// surveyID may be the form item or the feature service item itself.
func (c *Client) GetServiceURL(ctx context.Context, surveyID string) (string, error) {
	var it itemResponse
	if err := c.get(ctx, fmt.Sprintf("%v/sharing/rest/content/items/%v", c.cfg.PortalURL, url.PathEscape(surveyID)), nil, &it); err != nil {
		return "", errors.Wrapf(err, "error fetching survey item %v", surveyID)
	}
	if it.Error != nil {
		return "", errors.Wrapf(it.Error, "error fetching survey item %v", surveyID)
	}
	if it.Type == esriFeatureService && it.URL != "" {
		return it.URL, nil
	}
	var rel relatedItemsResponse
	params := url.Values{
		"relationshipType": {survey2Service},
		"direction":        {"forward"},
	}
	if err := c.get(ctx, fmt.Sprintf("%v/sharing/rest/content/items/%v/relatedItems", c.cfg.PortalURL, url.PathEscape(surveyID)), params, &rel); err != nil {
		return "", errors.Wrapf(err, "error fetching related items for survey %v", surveyID)
	}
	if rel.Error != nil {
		return "", errors.Wrapf(rel.Error, "error fetching related items for survey %v", surveyID)
	}
	for _, r := range rel.RelatedItems {
		if r.URL != "" {
			return r.URL, nil
		}
	}
	return "", fmt.Errorf("survey %v (%v) has no related feature service", surveyID, it.Title)
}

// queryAll pages through every feature in the layer.
func (c *Client) queryAll(ctx context.Context, layerURL string) ([]stream.Record, error) {
	var retval []stream.Record
	offset := 0
	for {
		params := url.Values{
			"where":             {"1=1"},
			"outFields":         {"*"},
			"returnGeometry":    {"false"},
			"resultOffset":      {strconv.Itoa(offset)},
			"resultRecordCount": {strconv.Itoa(c.cfg.PageSize)},
		}
		var resp queryResponse
		if err := c.get(ctx, layerURL+"/query", params, &resp); err != nil {
			return nil, errors.Wrapf(err, "error querying survey layer at offset %v", offset)
		}
		if resp.Error != nil {
			return nil, errors.Wrapf(resp.Error, "error querying survey layer at offset %v", offset)
		}
		fieldTypes := make(map[string]string, len(resp.Fields))
		for _, f := range resp.Fields {
			fieldTypes[f.Name] = f.Type
		}
		if retval == nil {
			retval = make([]stream.Record, 0, len(resp.Features))
		}
		for _, f := range resp.Features {
			rec := stream.NewRecordWithCapacity(len(f.Attributes))
			for k, v := range f.Attributes {
				cv, err := convertValue(fieldTypes[k], v)
				if err != nil {
					return nil, errors.Wrapf(err, "error converting field %v", k)
				}
				rec.SetData(k, cv)
			}
			retval = append(retval, rec)
		}
		c.log.Debug("fetched ", len(resp.Features), " survey records at offset ", offset)
		offset += len(resp.Features)
		if !resp.ExceededTransferLimit || len(resp.Features) == 0 {
			break
		}
	}
	c.log.Info("downloaded ", len(retval), " survey records")
	return retval, nil
}

// get issues a GET with f=json and the token added to params.
func (c *Client) get(ctx context.Context, u string, params url.Values, target interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("f", "json")
	if c.token != "" {
		params.Set("token", c.token)
	}
	req, err := http.NewRequest(http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(ctx, req, target)
}

// do sends req and decodes the JSON body into target, keeping numbers as json.Number.
func (c *Client) do(ctx context.Context, req *http.Request, target interface{}) error {
	resp, err := ctxhttp.Do(ctx, c.cfg.HttpClient, req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected HTTP status %v from %v: %v", resp.Status, req.URL.Path, strings.TrimSpace(string(body)))
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err = dec.Decode(target); err != nil {
		return errors.Wrapf(err, "error decoding response from %v", req.URL.Path)
	}
	return nil
}

// DownloadFunc matches Client.Download so callers can substitute the source in tests.
type DownloadFunc func(ctx context.Context, surveyID string) ([]stream.Record, error)
