// Package orchestrator tracks each loan application's data requirements,
// derives its status from the fulfilled set, reacts to provider events and
// runs the underwriting decision exactly once when collection completes.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"loanflow/internal/audit"
	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/common/logger"
	"loanflow/internal/common/metrics"
	"loanflow/internal/common/observability"
	"loanflow/internal/models"
	"loanflow/internal/notify"
	"loanflow/internal/provider"
	"loanflow/internal/reports"
	"loanflow/internal/store"
	"loanflow/internal/underwriting"

	"github.com/google/uuid"
)

// ConnectionStatusLinked is the provider's exact status string for a live
// connection. The comparison is case-sensitive.
const ConnectionStatusLinked = "Linked"

// dataTypeRequirements maps provider data-type names to requirement kinds.
// Unlisted data types are ignored.
var dataTypeRequirements = map[string]models.Requirement{
	"chartOfAccounts": models.RequirementChartOfAccounts,
	"balanceSheet":    models.RequirementBalanceSheet,
	"profitAndLoss":   models.RequirementProfitAndLoss,
}

// PlatformChecker resolves whether a platform key is an accounting platform.
type PlatformChecker interface {
	IsAccountingPlatform(ctx context.Context, key string) (bool, error)
}

// FinancialFetcher aggregates the two reports underwriting consumes.
type FinancialFetcher interface {
	GetFinancialData(ctx context.Context, app *models.Application) (*reports.FinancialData, error)
}

// ProviderClient is the slice of the provider client the orchestrator uses
// directly.
type ProviderClient interface {
	CreateCompany(ctx context.Context, externalRef string) (*provider.Company, error)
	GetFinancialMetrics(ctx context.Context, companyID, connectionID string, since time.Time) (*provider.FinancialMetrics, error)
}

// Orchestrator is a stateless coordinator over the store; it holds no
// locks. The store serializes conflicting writes to the same record, and
// the BeginUnderwriting compare-and-set guarantees at most one
// underwriting run per application.
type Orchestrator struct {
	store      store.Store
	client     ProviderClient
	platforms  PlatformChecker
	financials FinancialFetcher
	decider    underwriting.Decider
	auditor    audit.Recorder
	notifier   notify.Notifier
	obs        *observability.Observability // optional
	logger     logger.Logger
}

func New(
	st store.Store,
	client ProviderClient,
	platforms PlatformChecker,
	financials FinancialFetcher,
	decider underwriting.Decider,
	auditor audit.Recorder,
	notifier notify.Notifier,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      st,
		client:     client,
		platforms:  platforms,
		financials: financials,
		decider:    decider,
		auditor:    auditor,
		notifier:   notifier,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// CreateApplication provisions a provider company and the application
// record bound to it. If company creation fails no record is written.
func (o *Orchestrator) CreateApplication(ctx context.Context) (*models.Application, error) {
	id := uuid.New().String()

	company, err := o.client.CreateCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	app, err := o.store.CreateApplication(ctx, id, company.ID)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsCreated.Inc()
	o.auditor.RecordTransition(ctx, app.ID, "", models.StatusCreated, "application created")
	o.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"companyId":     app.ExternalCompanyID,
	})

	return app, nil
}

// SubmitApplicationDetails validates and persists the loan form, fulfils
// the ApplicationDetails requirement and attempts underwriting.
func (o *Orchestrator) SubmitApplicationDetails(ctx context.Context, applicationID string, form models.LoanForm) error {
	if form.Amount <= 0 || form.TermMonths < 12 {
		return domainerrors.NewValidation(
			"invalid loan application: amount must be positive and term at least 12 months")
	}

	app, err := o.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	if err := o.store.SetApplicationForm(ctx, applicationID, form); err != nil {
		return o.translateNotFound(err, "application %s not found", applicationID)
	}
	if err := o.store.AddFulfilledRequirementForCompany(ctx, app.ExternalCompanyID, models.RequirementApplicationDetails); err != nil {
		return o.translateNotFound(err, "application for company %s not found", app.ExternalCompanyID)
	}
	if err := o.updateStatus(ctx, applicationID, app.Status, models.StatusCollectingData, "application details submitted"); err != nil {
		return err
	}

	return o.TryUnderwrite(ctx, applicationID)
}

// OnAccountingConnectionStatus handles a connection-status alert. Alerts
// for non-accounting platforms are ignored.
func (o *Orchestrator) OnAccountingConnectionStatus(ctx context.Context, alert models.ConnectionStatusAlert) error {
	done := o.observeEvent(ctx, "connection-status")

	isAccounting, err := o.platforms.IsAccountingPlatform(ctx, alert.PlatformKey)
	if err != nil {
		done("error")
		return err
	}
	if !isAccounting {
		o.logger.Debug("ignoring alert for non-accounting platform", map[string]interface{}{
			"platformKey": alert.PlatformKey,
			"companyId":   alert.CompanyID,
		})
		done("ignored")
		return nil
	}

	if err := o.store.SetAccountingConnectionForCompany(ctx, alert.CompanyID, alert.ConnectionID); err != nil {
		done("error")
		return o.translateNotFound(err, "application for company %s not found", alert.CompanyID)
	}

	if alert.NewStatus == ConnectionStatusLinked {
		app, err := o.getApplicationByCompany(ctx, alert.CompanyID)
		if err != nil {
			done("error")
			return err
		}
		// A live connection restarts collection; it fulfils no requirement
		// by itself.
		if err := o.updateStatus(ctx, app.ID, app.Status, models.StatusCollectingData, "accounting connection linked"); err != nil {
			done("error")
			return err
		}
	}

	done("processed")
	return nil
}

// OnDataTypeSyncComplete handles a data-sync alert. Alerts carrying a
// connection id other than the application's stored one are stale or
// foreign and produce no state change; so do unrecognized data types.
func (o *Orchestrator) OnDataTypeSyncComplete(ctx context.Context, alert models.DataSyncAlert) error {
	done := o.observeEvent(ctx, "data-sync")

	app, err := o.getApplicationByCompany(ctx, alert.CompanyID)
	if err != nil {
		done("error")
		return err
	}

	if app.AccountingConnection == nil {
		done("error")
		return domainerrors.NewPrecondition(
			"application %s has no accounting connection registered", app.ID)
	}
	if *app.AccountingConnection != alert.ConnectionID {
		o.logger.Warn("ignoring sync alert for mismatched connection", map[string]interface{}{
			"applicationId":     app.ID,
			"alertConnectionId": alert.ConnectionID,
		})
		done("stale")
		return nil
	}

	requirement, ok := dataTypeRequirements[alert.DataType]
	if !ok {
		o.logger.Debug("ignoring sync alert for unmapped data type", map[string]interface{}{
			"applicationId": app.ID,
			"dataType":      alert.DataType,
		})
		done("ignored")
		return nil
	}

	if err := o.store.AddFulfilledRequirementForCompany(ctx, alert.CompanyID, requirement); err != nil {
		done("error")
		return o.translateNotFound(err, "application for company %s not found", alert.CompanyID)
	}

	if err := o.TryUnderwrite(ctx, app.ID); err != nil {
		done("error")
		return err
	}
	done("processed")
	return nil
}

// OnAccountCategorisationStatus handles a categorisation alert. The
// provider's financial metrics are the only reliable signal for "accounts
// classified": the requirement is fulfilled iff no metric entry carries an
// UncategorizedAccounts error.
func (o *Orchestrator) OnAccountCategorisationStatus(ctx context.Context, alert models.CategorisationAlert) error {
	done := o.observeEvent(ctx, "categorisation")

	app, err := o.getApplicationByCompany(ctx, alert.CompanyID)
	if err != nil {
		done("error")
		return err
	}

	if app.AccountingConnection == nil {
		done("error")
		return domainerrors.NewPrecondition(
			"application %s has no accounting connection registered", app.ID)
	}

	since := app.DateCreated.AddDate(-1, 0, 0)
	financialMetrics, err := o.client.GetFinancialMetrics(ctx, app.ExternalCompanyID, *app.AccountingConnection, since)
	if err != nil {
		done("error")
		return err
	}

	if allAccountsCategorised(financialMetrics) {
		if err := o.store.AddFulfilledRequirementForCompany(ctx, alert.CompanyID, models.RequirementAccountsClassified); err != nil {
			done("error")
			return o.translateNotFound(err, "application for company %s not found", alert.CompanyID)
		}
	} else {
		o.logger.Info("accounts not yet fully categorised", map[string]interface{}{
			"applicationId": app.ID,
		})
	}

	// Recomputation is idempotent: attempt underwriting even when nothing
	// was newly fulfilled.
	if err := o.TryUnderwrite(ctx, app.ID); err != nil {
		done("error")
		return err
	}
	done("processed")
	return nil
}

func allAccountsCategorised(m *provider.FinancialMetrics) bool {
	for _, entry := range m.Entries {
		for _, metricErr := range entry.Errors {
			if metricErr.Type == provider.MetricErrorUncategorizedAccounts {
				return false
			}
		}
	}
	return true
}

// TryUnderwrite recomputes status from the requirement set and, when every
// requirement kind is present, runs underwriting. The compare-and-set in
// BeginUnderwriting ensures only one of any set of concurrent callers
// proceeds past this point.
func (o *Orchestrator) TryUnderwrite(ctx context.Context, applicationID string) error {
	app, err := o.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	// Once underwriting has started (or finished) the status is no longer
	// a function of the requirement set.
	if app.Status == models.StatusUnderwriting || app.Status.Terminal() {
		return nil
	}

	newStatus := models.StatusCollectingData
	if app.RequirementsComplete() {
		newStatus = models.StatusDataCollectionComplete
	}

	if err := o.updateStatus(ctx, applicationID, app.Status, newStatus, "requirements recomputed"); err != nil {
		return err
	}

	if newStatus != models.StatusDataCollectionComplete {
		return nil
	}

	won, err := o.store.BeginUnderwriting(ctx, applicationID)
	if err != nil {
		return err
	}
	if !won {
		o.logger.Debug("underwriting already in progress", map[string]interface{}{
			"applicationId": applicationID,
		})
		return nil
	}

	o.auditor.RecordTransition(ctx, applicationID, newStatus, models.StatusUnderwriting, "underwriting started")
	app.Status = models.StatusUnderwriting
	return o.underwrite(ctx, app)
}

// underwrite fetches financial data and applies the decision function.
// Decision failures become the UnderwritingFailure status; anything else
// propagates.
func (o *Orchestrator) underwrite(ctx context.Context, app *models.Application) error {
	if app.Form == nil {
		// Unreachable through the state machine; checked defensively.
		return domainerrors.NewPrecondition("application %s has no submitted loan form", app.ID)
	}

	data, err := o.financials.GetFinancialData(ctx, app)
	if err != nil {
		return err
	}

	outcome, err := o.decider.Decide(app.Form.Amount, app.Form.TermMonths, data.ProfitAndLoss, data.BalanceSheet)
	if err != nil {
		if domainerrors.IsKind(err, domainerrors.KindUnderwriting) {
			o.logger.Warn("underwriting decision failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
			return o.finishUnderwriting(ctx, app, models.StatusUnderwritingFailure, "decision could not be computed")
		}
		return err
	}

	return o.finishUnderwriting(ctx, app, outcome, "decision computed")
}

func (o *Orchestrator) finishUnderwriting(ctx context.Context, app *models.Application, outcome models.Status, reason string) error {
	if err := o.store.UpdateApplicationStatus(ctx, app.ID, outcome); err != nil {
		return err
	}

	metrics.UnderwritingOutcomes.WithLabelValues(string(outcome)).Inc()
	o.auditor.RecordTransition(ctx, app.ID, models.StatusUnderwriting, outcome, reason)
	o.notifier.NotifyOutcome(ctx, app.ID, outcome)
	o.logger.Info("underwriting finished", map[string]interface{}{
		"applicationId": app.ID,
		"outcome":       outcome,
	})
	return nil
}

// GetApplication reads an application through the store, translating
// store-level not-found errors.
func (o *Orchestrator) GetApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	return o.getApplication(ctx, applicationID)
}

// GetApplicationStatus reads the current status only.
func (o *Orchestrator) GetApplicationStatus(ctx context.Context, applicationID string) (models.Status, error) {
	status, err := o.store.GetApplicationStatus(ctx, applicationID)
	if err != nil {
		return "", o.translateNotFound(err, "application %s not found", applicationID)
	}
	return status, nil
}

func (o *Orchestrator) getApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := o.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, o.translateNotFound(err, "application %s not found", applicationID)
	}
	return app, nil
}

func (o *Orchestrator) getApplicationByCompany(ctx context.Context, companyID string) (*models.Application, error) {
	app, err := o.store.GetApplicationByCompanyID(ctx, companyID)
	if err != nil {
		return nil, o.translateNotFound(err, "application for company %s not found", companyID)
	}
	return app, nil
}

func (o *Orchestrator) translateNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NewNotFound(err, format, args...)
	}
	return err
}

// updateStatus persists a collection-phase status change and audits it.
// The store skips the write once underwriting has started, so a late or
// racing event can never clobber an outcome.
func (o *Orchestrator) updateStatus(ctx context.Context, applicationID string, from, to models.Status, reason string) error {
	applied, err := o.store.TransitionStatus(ctx, applicationID, to)
	if err != nil {
		return o.translateNotFound(err, "application %s not found", applicationID)
	}
	if applied && from != to {
		o.auditor.RecordTransition(ctx, applicationID, from, to, reason)
	}
	return nil
}

func (o *Orchestrator) observeEvent(ctx context.Context, eventType string) func(result string) {
	start := time.Now()
	return func(result string) {
		elapsed := time.Since(start)
		metrics.ProviderEvents.WithLabelValues(eventType, result).Inc()
		metrics.EventDuration.WithLabelValues(eventType).Observe(elapsed.Seconds())
		if o.obs != nil {
			o.obs.RecordEventProcessed(ctx, eventType, result)
			o.obs.RecordEventDuration(ctx, eventType, elapsed)
		}
	}
}
