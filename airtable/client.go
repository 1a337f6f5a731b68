package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/technofriends/youtube-insights/models"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Field names in the configuration table. The prompt and model columns are
// lookup fields, so Airtable returns them as arrays.
const (
	fieldAppSection   = "App_Section"
	fieldProviders    = "Model Provider"
	fieldModels       = "Name (from Models)"
	fieldSystemPrompt = "System Prompt (from Prompt)"
	fieldUserPrompt   = "User Prompt (from Prompt)"
	fieldStrategy     = "Output Strategy"
	fieldIsActive     = "isActive"
)

// Resolver looks up a processing configuration by application section.
type Resolver interface {
	Lookup(ctx context.Context, section string) (*models.ProcessingConfig, error)
}

type Config struct {
	APIKey    string
	BaseID    string
	TableName string
	Timeout   time.Duration
	BaseURL   string // overridable for tests
}

type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logrus.StandardLogger(),
	}
}

type recordFields struct {
	Providers    []string        `json:"Model Provider"`
	Models       []string        `json:"Name (from Models)"`
	SystemPrompt []string        `json:"System Prompt (from Prompt)"`
	UserPrompt   []string        `json:"User Prompt (from Prompt)"`
	Strategy     string          `json:"Output Strategy"`
	IsActive     json.RawMessage `json:"isActive"`
}

type record struct {
	ID     string       `json:"id"`
	Fields recordFields `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
}

// Lookup fetches the first configuration row whose App_Section matches the
// given section. Returns (nil, nil) when no row matches; the caller decides
// how a missing row maps onto its error contract.
func (c *Client) Lookup(ctx context.Context, section string) (*models.ProcessingConfig, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.config.BaseURL, c.config.BaseID, url.PathEscape(c.config.TableName))

	query := url.Values{}
	query.Set("filterByFormula", fmt.Sprintf("{%s} = '%s'", fieldAppSection, section))
	query.Set("maxRecords", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating airtable request")
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.WithFields(logrus.Fields{
		"table":   c.config.TableName,
		"section": section,
	}).Debug("Looking up configuration row")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "querying airtable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("airtable API error %d: %s", resp.StatusCode, string(body))
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, errors.Wrap(err, "decoding airtable response")
	}

	if len(list.Records) == 0 {
		c.logger.WithField("section", section).Debug("No configuration row found")
		return nil, nil
	}

	return toProcessingConfig(list.Records[0].Fields), nil
}

func toProcessingConfig(f recordFields) *models.ProcessingConfig {
	return &models.ProcessingConfig{
		Providers:    f.Providers,
		Models:       f.Models,
		SystemPrompt: first(f.SystemPrompt),
		UserPrompt:   first(f.UserPrompt),
		Strategy:     models.Strategy(f.Strategy),
		IsActive:     truthy(f.IsActive),
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// truthy interprets the isActive cell, which Airtable renders as true, a
// checkbox omitted entirely, or occasionally the string "true".
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "true" || s == "1"
	}
	return false
}
