package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	maxHotelResults = 5

	// NoHotelsFound is the sentinel returned when the provider has no
	// usable entries.
	NoHotelsFound = "No hotels found."
)

// HotelClient searches hotel offers via a Booking-style API.
type HotelClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHotelClient builds a hotel search client.
func NewHotelClient(client *http.Client, baseURL, apiKey string) *HotelClient {
	return &HotelClient{client: client, baseURL: baseURL, apiKey: apiKey}
}

type hotelSearchResponse struct {
	Results []struct {
		Name string `json:"name"`
		// Price may arrive as a number or a string depending on the
		// provider, so it is kept loosely typed.
		Price interface{} `json:"price"`
	} `json:"results"`
}

// SearchHotels returns up to five formatted offer lines for the given city
// and stay dates. The result is never empty.
func (c *HotelClient) SearchHotels(ctx context.Context, city, checkIn, checkOut string) ([]string, error) {
	query := url.Values{}
	query.Set("city", city)
	query.Set("checkin", checkIn)
	query.Set("checkout", checkOut)
	query.Set("apikey", c.apiKey)
	rawURL := fmt.Sprintf("%s/v1/hotels?%s", c.baseURL, query.Encode())

	var body hotelSearchResponse
	if err := getJSON(ctx, c.client, "hotels", rawURL, &body); err != nil {
		return nil, err
	}

	var hotels []string
	for _, hotel := range body.Results {
		if len(hotels) == maxHotelResults {
			break
		}
		name := hotel.Name
		if name == "" {
			name = "?"
		}
		price := "?"
		if hotel.Price != nil {
			price = fmt.Sprintf("%v", hotel.Price)
		}
		hotels = append(hotels, fmt.Sprintf("%s - %s per night", name, price))
	}
	if len(hotels) == 0 {
		hotels = append(hotels, NoHotelsFound)
	}
	return hotels, nil
}
