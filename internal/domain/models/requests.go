package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

// ForecastRequest is the validated boundary input. All numeric parsing and
// defaulting happens here; the engine only sees clean values.
type ForecastRequest struct {
	PortfolioID      string `query:"portfolio_id" json:"portfolio_id" validate:"required_without=OrganizationID"`
	OrganizationID   string `query:"organization_id" json:"organization_id" validate:"required_without=PortfolioID"`
	Category         string `query:"category" json:"category"`
	Timeframe        string `query:"timeframe" json:"timeframe" default:"month" validate:"oneof=month quarter year"`
	Horizon          int    `query:"horizon" json:"horizon" default:"6" validate:"gte=1,lte=12"`
	IncludeIntervals bool   `query:"include_intervals" json:"include_intervals"`
	IncludeScenarios bool   `query:"include_scenarios" json:"include_scenarios"`
	Model            string `query:"model" json:"model" default:"linear" validate:"oneof=linear exponential seasonal ml"`
}

// ScopeID returns the portfolio scope when present, otherwise the
// organization scope.
func (r ForecastRequest) ScopeID() string {
	if r.PortfolioID != "" {
		return r.PortfolioID
	}
	return r.OrganizationID
}

// ObservationsRequest is the query input for listing stored observations.
// From and To accept RFC3339 or unix seconds and default to the last two
// years when omitted.
type ObservationsRequest struct {
	PortfolioID    string `query:"portfolio_id" json:"portfolio_id" validate:"required_without=OrganizationID"`
	OrganizationID string `query:"organization_id" json:"organization_id" validate:"required_without=PortfolioID"`
	Category       string `query:"category" json:"category"`
	From           string `query:"from" json:"from"`
	To             string `query:"to" json:"to"`
	Timeframe      string `query:"timeframe" json:"timeframe" default:"month" validate:"oneof=month quarter year"`
	Limit          int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

// ScopeID returns the portfolio scope when present, otherwise the
// organization scope.
func (r ObservationsRequest) ScopeID() string {
	if r.PortfolioID != "" {
		return r.PortfolioID
	}
	return r.OrganizationID
}

// Capabilities describes what the forecast endpoint supports.
type Capabilities struct {
	Models     []string `json:"models"`
	Timeframes []string `json:"timeframes"`
	MaxHorizon int      `json:"max_horizon"`
	Features   []string `json:"features"`
}
