package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	maxFlightResults = 5

	// NoFlightsFound is the sentinel returned when the provider has no
	// usable quotes.
	NoFlightsFound = "No flights found."
)

// FlightClient searches flight quotes via a Skyscanner-style browse API.
type FlightClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewFlightClient builds a flight search client.
func NewFlightClient(client *http.Client, baseURL, apiKey string) *FlightClient {
	return &FlightClient{client: client, baseURL: baseURL, apiKey: apiKey}
}

type flightQuotesResponse struct {
	Quotes []struct {
		MinPrice float64 `json:"MinPrice"`
		Direct   bool    `json:"Direct"`
	} `json:"Quotes"`
}

// SearchFlights returns up to five formatted quote lines for the given
// origin, destination and date. The result is never empty.
func (c *FlightClient) SearchFlights(ctx context.Context, origin, destination, date string) ([]string, error) {
	rawURL := fmt.Sprintf(
		"%s/apiservices/browsequotes/v1.0/US/USD/en-US/%s/%s/%s?apiKey=%s",
		c.baseURL,
		url.PathEscape(origin), url.PathEscape(destination), url.PathEscape(date),
		url.QueryEscape(c.apiKey),
	)

	var body flightQuotesResponse
	if err := getJSON(ctx, c.client, "flights", rawURL, &body); err != nil {
		return nil, err
	}

	var flights []string
	for _, quote := range body.Quotes {
		if len(flights) == maxFlightResults {
			break
		}
		price := "?"
		if quote.MinPrice > 0 {
			price = strconv.FormatFloat(quote.MinPrice, 'f', -1, 64)
		}
		kind := "With stops"
		if quote.Direct {
			kind = "Direct"
		}
		flights = append(flights, fmt.Sprintf("%s$ - %s", price, kind))
	}
	if len(flights) == 0 {
		flights = append(flights, NoFlightsFound)
	}
	return flights, nil
}
