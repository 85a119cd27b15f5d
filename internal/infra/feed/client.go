// Package feed implements the menu.Feed boundary against the public KYK
// menu endpoint, which serves a JSON array of candidate menus per city and
// meal slot spanning the provider's published date range.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kyk_meal_bot/internal/domain/menu"

	"github.com/sirupsen/logrus"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Entry
}

// NewClient builds a feed client. The timeout bounds the whole request so a
// hung provider cannot stall a scheduled tick.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Fetch retrieves the raw candidate menus for a city and slot. Any network,
// status or parse failure wraps menu.ErrFeedUnavailable; an empty array is a
// normal result. No retries are performed here.
func (c *Client) Fetch(ctx context.Context, cityID int, slot menu.Slot) ([]*menu.Menu, error) {
	reqURL := fmt.Sprintf("%s?cityId=%d&mealType=%d", c.baseURL, cityID, int(slot))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", menu.ErrFeedUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", menu.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned status %d", menu.ErrFeedUnavailable, resp.StatusCode)
	}

	var candidates []menuDTO
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", menu.ErrFeedUnavailable, err)
	}

	menus := make([]*menu.Menu, 0, len(candidates))
	for _, dto := range candidates {
		m, err := dto.toDomain()
		if err != nil {
			c.logger.WithError(err).WithField("raw_date", dto.Date).Warn("Skipping candidate with unparseable date")
			continue
		}
		menus = append(menus, m)
	}
	return menus, nil
}

// menuDTO mirrors the provider's wire format.
type menuDTO struct {
	Date           string       `json:"date"`
	MealType       int          `json:"mealType"`
	CityID         int          `json:"cityId"`
	First          string       `json:"first"`
	FirstCalories  calorieValue `json:"firstCalories"`
	Second         string       `json:"second"`
	SecondCalories calorieValue `json:"secondCalories"`
	Third          string       `json:"third"`
	ThirdCalories  calorieValue `json:"thirdCalories"`
	Fourth         string       `json:"fourth"`
	FourthCalories calorieValue `json:"fourthCalories"`
	TotalCalories  calorieValue `json:"totalCalories"`
}

func (d *menuDTO) toDomain() (*menu.Menu, error) {
	date, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing candidate date %q: %w", d.Date, err)
	}
	return &menu.Menu{
		Date:   menu.Day(date),
		Slot:   menu.Slot(d.MealType),
		CityID: d.CityID,
		Items: [4]menu.Item{
			{Name: d.First, Calories: int(d.FirstCalories)},
			{Name: d.Second, Calories: int(d.SecondCalories)},
			{Name: d.Third, Calories: int(d.ThirdCalories)},
			{Name: d.Fourth, Calories: int(d.FourthCalories)},
		},
		TotalCalories: int(d.TotalCalories),
	}, nil
}

// calorieValue tolerates the provider's mix of numeric, string, null and
// garbage calorie fields. Anything unparseable is treated as unknown (0).
type calorieValue int

func (c *calorieValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*c = 0
		return nil
	}
	*c = calorieValue(n)
	return nil
}
