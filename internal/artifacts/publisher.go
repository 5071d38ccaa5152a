package artifacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

const contentType = "text/plain; charset=utf-8"

type Publisher struct {
	store  Store
	bucket string
	logger *slog.Logger
}

func NewPublisher(store Store, bucket string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, bucket: bucket, logger: logger}
}

// ReportKey is the object key of a unit output: <run>/<stage>/<basename>.
func ReportKey(runID string, stage domain.Stage, file string) string {
	return path.Join(runID, string(stage), filepath.Base(file))
}

// PublishReport uploads the output of every succeeded unit in report under
// runID. Failed units are skipped. Upload errors are collected and returned
// together after every unit has been tried.
func (p *Publisher) PublishReport(ctx context.Context, runID string, report domain.BatchReport) error {
	var errs []error
	uploaded := 0
	for _, res := range report.Results {
		if !res.Succeeded() || res.Unit.OutputPath == "" {
			continue
		}
		if err := p.upload(ctx, ReportKey(runID, report.Stage, res.Unit.OutputPath), res.Unit.OutputPath); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Unit.Name(), err))
			continue
		}
		uploaded++
	}
	p.logger.Info("artifacts published",
		"run_id", runID,
		"stage", string(report.Stage),
		"uploaded", uploaded,
		"failed", len(errs),
	)
	return errors.Join(errs...)
}

// PublishFile uploads file as <run>/<basename>.
func (p *Publisher) PublishFile(ctx context.Context, runID, file string) error {
	return p.upload(ctx, path.Join(runID, filepath.Base(file)), file)
}

func (p *Publisher) upload(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := p.store.Put(ctx, p.bucket, key, f, info.Size(), contentType); err != nil {
		return fmt.Errorf("put %s/%s: %w", p.bucket, key, err)
	}
	return nil
}
