package models

import "time"

// RatelimitConfig overrides the team generation limit. Rate uses the "<limit>-<period>"
// format, e.g. "5-D" for five teams per day or "20-H" for twenty per hour.
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
