package provider

// Company is the provider-side record linked to an application.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Platform is a data source the provider can connect to. Key identifies
// the platform in connection-status alerts.
type Platform struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ProfitAndLossReport is the provider's profit-and-loss summary for a
// reporting window.
type ProfitAndLossReport struct {
	Currency  string  `json:"currency"`
	Income    float64 `json:"income"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"netProfit"`
}

// BalanceSheetReport is the provider's balance-sheet summary for a
// reporting window.
type BalanceSheetReport struct {
	Currency         string  `json:"currency"`
	TotalAssets      float64 `json:"totalAssets"`
	TotalLiabilities float64 `json:"totalLiabilities"`
	NetAssets        float64 `json:"netAssets"`
}

// MetricErrorUncategorizedAccounts marks a metric that could not be
// computed because accounts are not fully categorised yet.
const MetricErrorUncategorizedAccounts = "UncategorizedAccounts"

// FinancialMetrics is the provider's computed metric set for a window.
type FinancialMetrics struct {
	Entries []MetricEntry `json:"entries"`
}

// MetricEntry is a single named metric; Errors is non-empty when the
// provider could not compute it.
type MetricEntry struct {
	Name   string        `json:"name"`
	Value  *float64      `json:"value,omitempty"`
	Errors []MetricError `json:"errors,omitempty"`
}

type MetricError struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}
