package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/models"
	"loanflow/internal/provider"
)

func TestDecide(t *testing.T) {
	decider := NewRatioDecider(0.05, 0.5)

	tests := []struct {
		name    string
		pnl     *provider.ProfitAndLossReport
		bs      *provider.BalanceSheetReport
		outcome models.Status
	}{
		{
			name:    "healthy margin and low gearing approved",
			pnl:     &provider.ProfitAndLossReport{Income: 100000, NetProfit: 10000},
			bs:      &provider.BalanceSheetReport{TotalAssets: 50000, TotalLiabilities: 10000},
			outcome: models.StatusUnderwritingApproved,
		},
		{
			name:    "margin exactly at threshold approved",
			pnl:     &provider.ProfitAndLossReport{Income: 100000, NetProfit: 5000},
			bs:      &provider.BalanceSheetReport{TotalAssets: 50000, TotalLiabilities: 25000},
			outcome: models.StatusUnderwritingApproved,
		},
		{
			name:    "thin margin declined",
			pnl:     &provider.ProfitAndLossReport{Income: 100000, NetProfit: 1000},
			bs:      &provider.BalanceSheetReport{TotalAssets: 50000, TotalLiabilities: 10000},
			outcome: models.StatusUnderwritingDeclined,
		},
		{
			name:    "loss-making declined",
			pnl:     &provider.ProfitAndLossReport{Income: 100000, NetProfit: -20000},
			bs:      &provider.BalanceSheetReport{TotalAssets: 50000, TotalLiabilities: 10000},
			outcome: models.StatusUnderwritingDeclined,
		},
		{
			name:    "over-geared declined",
			pnl:     &provider.ProfitAndLossReport{Income: 100000, NetProfit: 20000},
			bs:      &provider.BalanceSheetReport{TotalAssets: 50000, TotalLiabilities: 40000},
			outcome: models.StatusUnderwritingDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := decider.Decide(10000, 24, tt.pnl, tt.bs)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestDecideUncomputable(t *testing.T) {
	decider := NewRatioDecider(0.05, 0.5)

	tests := []struct {
		name string
		pnl  *provider.ProfitAndLossReport
		bs   *provider.BalanceSheetReport
	}{
		{name: "missing profit and loss", pnl: nil, bs: &provider.BalanceSheetReport{TotalAssets: 1}},
		{name: "missing balance sheet", pnl: &provider.ProfitAndLossReport{Income: 1}, bs: nil},
		{name: "zero income", pnl: &provider.ProfitAndLossReport{Income: 0}, bs: &provider.BalanceSheetReport{TotalAssets: 1}},
		{name: "zero assets", pnl: &provider.ProfitAndLossReport{Income: 1}, bs: &provider.BalanceSheetReport{TotalAssets: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decider.Decide(10000, 24, tt.pnl, tt.bs)
			require.Error(t, err)
			assert.Equal(t, domainerrors.KindUnderwriting, domainerrors.KindOf(err))
		})
	}
}
