package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/langextract-client/internal/config"
	"github.com/samvad-hq/langextract-client/internal/domain"
	"github.com/samvad-hq/langextract-client/internal/logger"
	"github.com/samvad-hq/langextract-client/internal/storage"
	"github.com/samvad-hq/langextract-client/pkg/extractor"
	"github.com/samvad-hq/langextract-client/pkg/httpclient"
	"github.com/samvad-hq/langextract-client/pkg/sinks"
)

// Runner wires the extractor client to the local job ledger and result sinks.
type Runner struct {
	cfg    *config.Config
	client *extractor.Client
	http   httpclient.Client
	store  storage.Store
	fanout *sinks.Fanout
	log    logger.Logger
}

// NewRunner builds a runner from config. Sinks are only built when a sinks file is configured.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	hc := httpclient.NewRestyClient(cfg.HTTPTimeout)
	client := extractor.New(cfg.BaseURL, cfg.APIKey,
		extractor.WithHTTPClient(hc),
		extractor.WithLogger(log),
	)

	store, err := storage.NewStore(cfg.LedgerType, cfg.LedgerPath, storage.Options{
		EntryTTL:        cfg.LedgerTTL,
		CleanupInterval: cfg.LedgerCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	log.DebugObj("ledger initialized", "ledger_config", map[string]any{
		"type":                     cfg.LedgerType,
		"path":                     cfg.LedgerPath,
		"entry_ttl_seconds":        int(cfg.LedgerTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.LedgerCleanupInterval.Seconds()),
	})

	fanout, err := buildSinks(ctx, cfg.SinksFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Runner{
		cfg:    cfg,
		client: client,
		http:   hc,
		store:  store,
		fanout: fanout,
		log:    log,
	}, nil
}

func buildSinks(ctx context.Context, path string, log logger.Logger) (*sinks.Fanout, error) {
	if path == "" {
		return sinks.NewFanout(), nil
	}
	file, err := sinks.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks: %w", err)
	}
	enabled := file.Enabled()
	built, err := sinks.DefaultBuilders().Build(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.DebugObj("sinks loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built...), nil
}

// Client exposes the underlying extractor client.
func (r *Runner) Client() *extractor.Client { return r.client }

// HTTP exposes the shared transport, used for fetching documents to ingest.
func (r *Runner) HTTP() httpclient.Client { return r.http }

// Health checks the service.
func (r *Runner) Health(ctx context.Context) (extractor.Response, error) {
	return r.client.Health(ctx)
}

// SubmitWorkflow creates or updates a workflow.
func (r *Runner) SubmitWorkflow(ctx context.Context, body any) (extractor.Response, error) {
	return r.client.CreateOrUpdateWorkflow(ctx, body)
}

// InferSchema asks the service to derive a schema.
func (r *Runner) InferSchema(ctx context.Context, body any) (extractor.Response, error) {
	return r.client.InferSchema(ctx, body)
}

// Validate evaluates rules against data on the service.
func (r *Runner) Validate(ctx context.Context, body any) (extractor.Response, error) {
	return r.client.Validate(ctx, body)
}

// Extract submits text for extraction and records the returned job in the ledger.
func (r *Runner) Extract(ctx context.Context, params map[string]string, body any) (extractor.Response, error) {
	resp, err := r.client.Extract(ctx, params, body)
	if err != nil {
		return nil, err
	}

	accepted, err := extractor.As[extractor.Accepted](resp)
	if err != nil || accepted.JobID == "" {
		r.log.WarnObj("extract response carried no job id", "extract_response", resp)
		return resp, nil
	}

	entry := domain.JobEntry{
		ID:          accepted.JobID,
		WorkflowID:  params["workflow_id"],
		Status:      string(extractor.JobProcessing),
		SubmittedAt: time.Now().UTC(),
	}
	if err := r.store.RecordJob(entry); err != nil {
		r.log.ErrorObj("ledger record failed", "error", err.Error())
	} else {
		r.log.InfoObj("job submitted", "job", entry)
	}
	return resp, nil
}

// Job looks the job up on the service, refreshes the ledger, and forwards
// terminal results to the configured sinks. A ledgered job is forwarded once;
// lookups after a successful delivery only refresh the ledger.
func (r *Runner) Job(ctx context.Context, id string) (extractor.Response, error) {
	resp, err := r.client.Job(ctx, id)
	if err != nil {
		return nil, err
	}

	job, err := extractor.As[extractor.JobRecord](resp)
	if err != nil || job.Status == "" {
		return resp, nil
	}
	if job.ID == "" {
		job.ID = id
	}

	prev, found, err := r.store.UpdateStatus(job.ID, string(job.Status))
	if err != nil {
		r.log.ErrorObj("ledger update failed", "error", err.Error())
	}

	if !job.Status.Terminal() || r.fanout.Len() == 0 {
		return resp, nil
	}
	if found && prev.Delivered && prev.Status == string(job.Status) {
		r.log.DebugObj("job result already delivered", "job_id", job.ID)
		return resp, nil
	}

	if r.deliver(ctx, job, prev.WorkflowID) && found {
		if _, err := r.store.MarkDelivered(job.ID); err != nil {
			r.log.ErrorObj("ledger update failed", "error", err.Error())
		}
	}
	return resp, nil
}

// deliver sends the terminal job to every sink and reports whether all accepted it.
func (r *Runner) deliver(ctx context.Context, job extractor.JobRecord, workflowID string) bool {
	evt := sinks.NewEvent(job.ID, workflowID, string(job.Status), job.Result, job.Error)
	rep := r.fanout.Deliver(ctx, evt)
	meta := map[string]any{
		"job_id":    job.ID,
		"delivered": rep.Delivered,
		"sinks":     rep.Attempted,
	}
	if err := rep.Err(); err != nil {
		meta["error"] = err.Error()
		r.log.ErrorObj("job result delivery failed", "delivery_meta", meta)
		return false
	}
	r.log.InfoObj("job result delivered", "delivery_meta", meta)
	return true
}

// Jobs lists ledger entries, newest first.
func (r *Runner) Jobs() ([]domain.JobEntry, error) {
	return r.store.Jobs()
}

// Close releases the ledger and sinks.
func (r *Runner) Close() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.fanout.Close(), r.store.Close())
}
