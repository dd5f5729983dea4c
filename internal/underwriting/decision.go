// Package underwriting turns loan terms and financial reports into an
// outcome status. The decision is a pure computation; it performs no I/O.
package underwriting

import (
	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/models"
	"loanflow/internal/provider"
)

// Decider is the decision contract the orchestrator consumes.
type Decider interface {
	Decide(amount float64, termMonths int, pnl *provider.ProfitAndLossReport, bs *provider.BalanceSheetReport) (models.Status, error)
}

// RatioDecider approves when the applicant's net profit margin meets the
// configured minimum and the gearing ratio stays under the configured
// maximum.
type RatioDecider struct {
	minNetProfitMargin float64
	maxGearingRatio    float64
}

var _ Decider = (*RatioDecider)(nil)

func NewRatioDecider(minNetProfitMargin, maxGearingRatio float64) *RatioDecider {
	return &RatioDecider{
		minNetProfitMargin: minNetProfitMargin,
		maxGearingRatio:    maxGearingRatio,
	}
}

// Decide returns UnderwritingApproved or UnderwritingDeclined, or an
// underwriting-kind error when the reports cannot support a decision.
func (d *RatioDecider) Decide(amount float64, termMonths int, pnl *provider.ProfitAndLossReport, bs *provider.BalanceSheetReport) (models.Status, error) {
	if pnl == nil || bs == nil {
		return "", domainerrors.NewUnderwriting(nil, "missing financial reports")
	}
	if pnl.Income <= 0 {
		return "", domainerrors.NewUnderwriting(nil, "profit and loss report has no income; margin cannot be computed")
	}
	if bs.TotalAssets <= 0 {
		return "", domainerrors.NewUnderwriting(nil, "balance sheet has no assets; gearing cannot be computed")
	}

	netProfitMargin := pnl.NetProfit / pnl.Income
	gearingRatio := bs.TotalLiabilities / bs.TotalAssets

	if netProfitMargin >= d.minNetProfitMargin && gearingRatio <= d.maxGearingRatio {
		return models.StatusUnderwritingApproved, nil
	}
	return models.StatusUnderwritingDeclined, nil
}
