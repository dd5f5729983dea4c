package reports

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/models"
	"loanflow/internal/provider"
)

type stubClient struct {
	pnl      *provider.ProfitAndLossReport
	pnlErr   error
	bs       *provider.BalanceSheetReport
	bsErr    error
	pnlSince atomic.Value
	bsSince  atomic.Value
}

func (c *stubClient) GetProfitAndLoss(ctx context.Context, companyID, connectionID string, since time.Time) (*provider.ProfitAndLossReport, error) {
	c.pnlSince.Store(since)
	if c.pnlErr != nil {
		return nil, c.pnlErr
	}
	return c.pnl, nil
}

func (c *stubClient) GetBalanceSheet(ctx context.Context, companyID, connectionID string, since time.Time) (*provider.BalanceSheetReport, error) {
	c.bsSince.Store(since)
	if c.bsErr != nil {
		return nil, c.bsErr
	}
	return c.bs, nil
}

func testApplication() *models.Application {
	conn := "conn-1"
	return &models.Application{
		ID:                   "app-1",
		ExternalCompanyID:    "company-1",
		AccountingConnection: &conn,
		DateCreated:          time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestGetFinancialData(t *testing.T) {
	client := &stubClient{
		pnl: &provider.ProfitAndLossReport{Income: 120000, NetProfit: 25000},
		bs:  &provider.BalanceSheetReport{TotalAssets: 80000, TotalLiabilities: 30000},
	}
	fetcher := NewFetcher(client)

	data, err := fetcher.GetFinancialData(context.Background(), testApplication())

	require.NoError(t, err)
	require.NotNil(t, data.ProfitAndLoss)
	require.NotNil(t, data.BalanceSheet)
	assert.Equal(t, 120000.0, data.ProfitAndLoss.Income)
	assert.Equal(t, 80000.0, data.BalanceSheet.TotalAssets)

	// Both requests cover the twelve months before the application date.
	expected := time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, expected, client.pnlSince.Load())
	assert.Equal(t, expected, client.bsSince.Load())
}

func TestGetFinancialDataNoConnection(t *testing.T) {
	fetcher := NewFetcher(&stubClient{})
	app := testApplication()
	app.AccountingConnection = nil

	_, err := fetcher.GetFinancialData(context.Background(), app)

	require.Error(t, err)
	assert.Equal(t, domainerrors.KindPrecondition, domainerrors.KindOf(err))
}

func TestGetFinancialDataPartialFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
	}{
		{
			name: "profit and loss fails",
			client: &stubClient{
				pnlErr: errors.New("report unavailable"),
				bs:     &provider.BalanceSheetReport{TotalAssets: 80000},
			},
		},
		{
			name: "balance sheet fails",
			client: &stubClient{
				pnl:   &provider.ProfitAndLossReport{Income: 120000},
				bsErr: errors.New("report unavailable"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewFetcher(tt.client)

			data, err := fetcher.GetFinancialData(context.Background(), testApplication())

			// No partial result surfaces.
			require.Error(t, err)
			assert.Nil(t, data)
		})
	}
}
