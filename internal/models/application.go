package models

import "time"

// Status is the lifecycle state of a loan application.
type Status string

const (
	StatusCreated                Status = "Created"
	StatusCollectingData         Status = "CollectingData"
	StatusDataCollectionComplete Status = "DataCollectionComplete"
	StatusUnderwriting           Status = "Underwriting"
	StatusUnderwritingApproved   Status = "UnderwritingApproved"
	StatusUnderwritingDeclined   Status = "UnderwritingDeclined"
	StatusUnderwritingFailure    Status = "UnderwritingFailure"
)

// Terminal reports whether s is one of the underwriting outcomes.
func (s Status) Terminal() bool {
	switch s {
	case StatusUnderwritingApproved, StatusUnderwritingDeclined, StatusUnderwritingFailure:
		return true
	}
	return false
}

// Requirement is one of the fixed data prerequisites that must all be
// satisfied before underwriting can proceed.
type Requirement string

const (
	RequirementApplicationDetails Requirement = "ApplicationDetails"
	RequirementChartOfAccounts    Requirement = "ChartOfAccounts"
	RequirementBalanceSheet       Requirement = "BalanceSheet"
	RequirementProfitAndLoss      Requirement = "ProfitAndLoss"
	RequirementAccountsClassified Requirement = "AccountsClassified"
)

// AllRequirements is the closed requirement universe. Completeness is
// checked by set-containment against this slice, never by a count.
var AllRequirements = []Requirement{
	RequirementApplicationDetails,
	RequirementChartOfAccounts,
	RequirementBalanceSheet,
	RequirementProfitAndLoss,
	RequirementAccountsClassified,
}

// LoanForm is the loan request submitted by the applicant.
type LoanForm struct {
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"termMonths"`
}

// Application is a single loan-underwriting case tracked end-to-end.
// AccountingConnection and Form are absent until the corresponding
// provider event or submission arrives.
type Application struct {
	ID                   string        `json:"id"`
	ExternalCompanyID    string        `json:"externalCompanyId"`
	AccountingConnection *string       `json:"accountingConnection,omitempty"`
	Form                 *LoanForm     `json:"form,omitempty"`
	Requirements         []Requirement `json:"requirements"`
	Status               Status        `json:"status"`
	DateCreated          time.Time     `json:"dateCreated"`
}

// HasRequirement reports whether the requirement has been fulfilled.
func (a *Application) HasRequirement(r Requirement) bool {
	for _, have := range a.Requirements {
		if have == r {
			return true
		}
	}
	return false
}

// RequirementsComplete reports whether every requirement kind is fulfilled.
func (a *Application) RequirementsComplete() bool {
	for _, r := range AllRequirements {
		if !a.HasRequirement(r) {
			return false
		}
	}
	return true
}
