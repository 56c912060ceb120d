package models

import "time"

const (
	// LeadPokemonPlaceholder is returned until lead selection is parsed out of the strategy
	LeadPokemonPlaceholder = "See strategy guide"
	// WinConditionsPlaceholder is the single win condition entry returned with every team
	WinConditionsPlaceholder = "See strategy guide for detailed win conditions"
	// StrategyPlaceholder replaces the strategy when the completion has no STRATEGY section
	StrategyPlaceholder = "Strategy guide not available"
)

// TeamRequest is the body of a team generation request
type TeamRequest struct {
	PokemonNames []string `json:"pokemonNames" validate:"min=1,dive,required"`
	BattleFormat string   `json:"battleFormat" validate:"required"`
	Playstyles   []string `json:"playstyles" validate:"min=1,max=3,dive,required"`
}

// RateLimitInfo is the quota snapshot returned to the client
type RateLimitInfo struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	ResetTime string `json:"resetTime"`
}

// TeamResponse is the successful (or failed) result of a team generation request
type TeamResponse struct {
	Success       bool           `json:"success"`
	ShowdownText  string         `json:"showdownText,omitempty"`
	Strategy      string         `json:"strategy,omitempty"`
	LeadPokemon   string         `json:"leadPokemon,omitempty"`
	WinConditions []string       `json:"winConditions,omitempty"`
	Error         string         `json:"error,omitempty"`
	RateLimit     *RateLimitInfo `json:"rateLimit,omitempty"`
}

// RateLimitedResponse is returned with 429 when the daily quota is used up
type RateLimitedResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	Remaining   int    `json:"remaining"`
	ResetTime   string `json:"resetTime"`
	Limit       int    `json:"limit"`
	RateLimited bool   `json:"rateLimited"`
}

// FormatResetTime renders a reset instant the way clients expect it (ISO-8601, UTC, milliseconds)
func FormatResetTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
