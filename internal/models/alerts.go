package models

// Inbound webhook alerts from the accounting-data aggregation provider.

// ConnectionStatusAlert signals a change in a company's data-connection
// status. NewStatus "Linked" (exact, case-sensitive) means the connection
// is live.
type ConnectionStatusAlert struct {
	CompanyID    string `json:"companyId"`
	PlatformKey  string `json:"platformKey"`
	ConnectionID string `json:"connectionId"`
	NewStatus    string `json:"newStatus"`
}

// DataSyncAlert signals that the provider finished syncing one data type
// for a connection.
type DataSyncAlert struct {
	CompanyID    string `json:"companyId"`
	ConnectionID string `json:"connectionId"`
	DataType     string `json:"dataType"`
}

// CategorisationAlert signals that account categorisation state changed
// for a company.
type CategorisationAlert struct {
	CompanyID string `json:"companyId"`
}
