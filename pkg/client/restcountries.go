package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const countryService = "Country API"

type RestCountriesClient struct {
	*BaseClient
	baseURL string
}

func NewRestCountriesClient(baseURL string, config ClientConfig, logger *zap.Logger) *RestCountriesClient {
	return newRestCountriesClient(baseURL, NewBaseClient(countryService, config, logger))
}

func newRestCountriesClient(baseURL string, base *BaseClient) *RestCountriesClient {
	if baseURL == "" {
		baseURL = "https://restcountries.com/v3.1"
	}
	return &RestCountriesClient{BaseClient: base, baseURL: baseURL}
}

// GetCountry looks a country up by name. Every match is returned in the
// provider's order.
func (c *RestCountriesClient) GetCountry(ctx context.Context, name string) (*models.CountryLookup, error) {
	data, err := c.GetWithRetry(ctx, fmt.Sprintf("%s/name/%s", c.baseURL, url.PathEscape(name)))
	if err != nil {
		return nil, withCountryMessage(err)
	}

	var countries []models.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, &apperr.ParseError{Service: countryService, Field: "body", Err: err}
	}

	return &models.CountryLookup{Raw: json.RawMessage(data), Countries: countries}, nil
}

func withCountryMessage(err error) error {
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) || len(upstream.Body) == 0 {
		return err
	}

	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(upstream.Body, &body) == nil && body.Message != "" {
		upstream.Message = body.Message
	}
	return err
}
