// Package weather is the WeatherAPI.com collaborator: current conditions for
// a location query, place-name search, and the mapping from condition codes
// to the decorative effect kinds.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Sunilsolankiji/MyTasks/internal/model"
)

const DefaultBaseURL = "https://api.weatherapi.com/v1"

var ErrMissingAPIKey = errors.New("weather api key is not configured")

// Current is the subset of the provider response the application reads.
type Current struct {
	Location      string  `json:"location"`
	ConditionCode int     `json:"conditionCode"`
	ConditionText string  `json:"conditionText"`
	Condition     string  `json:"condition"` // coarse bucket, see mapCodeToCondition
	IsDay         bool    `json:"isDay"`
	TempC         float64 `json:"tempC"`
	Humidity      int     `json:"humidity"`
	WindKph       float64 `json:"windKph"`
	PrecipMM      float64 `json:"precipMm"`
	CloudCover    int     `json:"cloudCover"`
	UVIndex       float64 `json:"uvIndex"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, endpoint, query string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u := fmt.Sprintf("%s/%s?key=%s&q=%s", c.baseURL, endpoint,
		url.QueryEscape(c.apiKey), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return nil, fmt.Errorf("weather api: %s", msg.String())
		}
		return nil, fmt.Errorf("weather api: status %d", resp.StatusCode)
	}
	return body, nil
}

// CurrentConditions fetches current weather for the query (a place name or
// "lat,lon" pair).
func (c *Client) CurrentConditions(ctx context.Context, query string) (Current, error) {
	body, err := c.get(ctx, "current.json", query)
	if err != nil {
		return Current{}, err
	}

	code := int(gjson.GetBytes(body, "current.condition.code").Int())
	return Current{
		Location:      gjson.GetBytes(body, "location.name").String(),
		ConditionCode: code,
		ConditionText: gjson.GetBytes(body, "current.condition.text").String(),
		Condition:     mapCodeToCondition(code),
		IsDay:         gjson.GetBytes(body, "current.is_day").Int() == 1,
		TempC:         gjson.GetBytes(body, "current.temp_c").Float(),
		Humidity:      int(gjson.GetBytes(body, "current.humidity").Int()),
		WindKph:       gjson.GetBytes(body, "current.wind_kph").Float(),
		PrecipMM:      gjson.GetBytes(body, "current.precip_mm").Float(),
		CloudCover:    int(gjson.GetBytes(body, "current.cloud").Int()),
		UVIndex:       gjson.GetBytes(body, "current.uv").Float(),
	}, nil
}

// SearchLocations returns location candidates for a partial place name.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	if len(query) < 2 {
		return []model.Location{}, nil
	}
	body, err := c.get(ctx, "search.json", query)
	if err != nil {
		return nil, err
	}

	out := []model.Location{}
	for _, item := range gjson.ParseBytes(body).Array() {
		out = append(out, model.Location{
			ID:      int(item.Get("id").Int()),
			Name:    item.Get("name").String(),
			Region:  item.Get("region").String(),
			Country: item.Get("country").String(),
			Lat:     item.Get("lat").Float(),
			Lon:     item.Get("lon").Float(),
		})
	}
	return out, nil
}

// mapCodeToCondition buckets WeatherAPI condition codes into the coarse
// conditions the UI understands.
func mapCodeToCondition(code int) string {
	switch {
	case code == 1000:
		return "sunny"
	case in(code, 1003, 1006, 1009, 1030, 1135, 1147):
		return "cloudy"
	case (code >= 1150 && code <= 1201) || in(code, 1063, 1240, 1243, 1246):
		return "rainy"
	case (code >= 1204 && code <= 1237) ||
		in(code, 1066, 1069, 1072, 1114, 1117, 1255, 1258, 1261, 1264):
		return "snowy"
	case in(code, 1087, 1273, 1276, 1279, 1282):
		return "stormy"
	}
	return "unknown"
}

func in(code int, set ...int) bool {
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}
