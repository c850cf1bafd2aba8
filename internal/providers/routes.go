package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// RouteClient builds leg-by-leg directions via a Google Directions-style API.
type RouteClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewRouteClient builds a route planning client.
func NewRouteClient(client *http.Client, baseURL, apiKey string) *RouteClient {
	return &RouteClient{client: client, baseURL: baseURL, apiKey: apiKey}
}

type directionsResponse struct {
	Routes []struct {
		Legs []struct {
			Steps []struct {
				HTMLInstructions string `json:"html_instructions"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// PlanRoute resolves directions for each consecutive city pair. A pair with
// no route yields a per-leg "not found" line instead of failing the whole
// request. The result has one entry per leg and is never empty for two or
// more cities.
func (c *RouteClient) PlanRoute(ctx context.Context, cities []string) ([]string, error) {
	legs := make([]string, 0, len(cities)-1)
	for i := 0; i+1 < len(cities); i++ {
		start, end := cities[i], cities[i+1]
		leg, err := c.planLeg(ctx, start, end)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

func (c *RouteClient) planLeg(ctx context.Context, start, end string) (string, error) {
	query := url.Values{}
	query.Set("origin", start)
	query.Set("destination", end)
	query.Set("key", c.apiKey)
	rawURL := fmt.Sprintf("%s/maps/api/directions/json?%s", c.baseURL, query.Encode())

	var body directionsResponse
	if err := getJSON(ctx, c.client, "routes", rawURL, &body); err != nil {
		return "", err
	}

	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return fmt.Sprintf("Route %s → %s not found", start, end), nil
	}

	steps := body.Routes[0].Legs[0].Steps
	instructions := make([]string, 0, len(steps))
	for _, step := range steps {
		instructions = append(instructions, stripInstructionMarkup(step.HTMLInstructions))
	}
	return fmt.Sprintf("Route %s → %s:\n%s", start, end, strings.Join(instructions, "\n")), nil
}

// stripInstructionMarkup removes the markup the directions API embeds in
// step instructions.
func stripInstructionMarkup(instr string) string {
	instr = strings.ReplaceAll(instr, "<b>", "")
	instr = strings.ReplaceAll(instr, "</b>", "")
	instr = strings.ReplaceAll(instr, `<div style="font-size:0.9em">`, " ")
	instr = strings.ReplaceAll(instr, "</div>", "")
	return instr
}
