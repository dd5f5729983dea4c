// Package reports aggregates the financial reports needed for an
// underwriting decision.
package reports

import (
	"context"
	"time"

	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/models"
	"loanflow/internal/provider"

	"golang.org/x/sync/errgroup"
)

// Client is the slice of the provider client the fetcher needs.
type Client interface {
	GetProfitAndLoss(ctx context.Context, companyID, connectionID string, since time.Time) (*provider.ProfitAndLossReport, error)
	GetBalanceSheet(ctx context.Context, companyID, connectionID string, since time.Time) (*provider.BalanceSheetReport, error)
}

// FinancialData holds both reports underwriting consumes. No partial
// result: either both are present or the fetch failed.
type FinancialData struct {
	ProfitAndLoss *provider.ProfitAndLossReport
	BalanceSheet  *provider.BalanceSheetReport
}

// Fetcher issues the two report requests concurrently and joins them.
type Fetcher struct {
	client Client
}

func NewFetcher(client Client) *Fetcher {
	return &Fetcher{client: client}
}

// GetFinancialData fetches the application's profit-and-loss and
// balance-sheet reports for the twelve months ending at its creation date.
func (f *Fetcher) GetFinancialData(ctx context.Context, app *models.Application) (*FinancialData, error) {
	if app.AccountingConnection == nil {
		return nil, domainerrors.NewPrecondition("application %s has no accounting connection", app.ID)
	}
	connectionID := *app.AccountingConnection
	since := app.DateCreated.AddDate(-1, 0, 0)

	var data FinancialData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report, err := f.client.GetProfitAndLoss(ctx, app.ExternalCompanyID, connectionID, since)
		if err != nil {
			return err
		}
		data.ProfitAndLoss = report
		return nil
	})

	g.Go(func() error {
		report, err := f.client.GetBalanceSheet(ctx, app.ExternalCompanyID, connectionID, since)
		if err != nil {
			return err
		}
		data.BalanceSheet = report
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &data, nil
}
