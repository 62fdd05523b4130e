package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"listings-pipeline/config"
	"listings-pipeline/models"
	"listings-pipeline/storage"
	"listings-pipeline/utils"
)

const noListingsMessage = "No listings found"

// Processor runs the parse stage: archived markup in, CSV table out.
type Processor struct {
	store     storage.ObjectStore
	sink      storage.RecordWriter
	extractor *Extractor
	summary   *SummaryService
	logger    *utils.Logger

	destBucket string
}

// NewProcessor wires the parse stage. sink may be nil.
func NewProcessor(cfg *config.Config, store storage.ObjectStore, sink storage.RecordWriter, logger *utils.Logger) *Processor {
	return &Processor{
		store:      store,
		sink:       sink,
		extractor:  NewExtractor(logger),
		summary:    NewSummaryService(logger),
		logger:     logger,
		destBucket: cfg.TableBucket,
	}
}

// Run reads bucket/key, extracts its listings and writes the table next to
// it in the destination bucket. An artifact without listings yields an
// "error" result, not a Go error, and writes nothing.
func (p *Processor) Run(ctx context.Context, bucket, key string) (models.Result, error) {
	markup, err := p.store.Get(ctx, bucket, key)
	if err != nil {
		return models.Result{}, fmt.Errorf("processor: download %s/%s: %w", bucket, key, err)
	}

	records, err := p.extractor.Extract(bytes.NewReader(markup), key)
	if errors.Is(err, ErrNoListings) {
		p.logger.Warn("[processor] No listings matching %q found in %s", ListingSelector, key)
		return models.Result{Status: models.StatusError, Message: noListingsMessage}, nil
	}
	if err != nil {
		return models.Result{}, err
	}

	table, err := storage.EncodeCSV(records)
	if err != nil {
		return models.Result{}, fmt.Errorf("processor: %w", err)
	}

	csvKey := storage.TableKey(key)
	if err := p.store.Put(ctx, p.destBucket, csvKey, table, storage.ContentTypeCSV); err != nil {
		return models.Result{}, fmt.Errorf("processor: upload %s: %w", csvKey, err)
	}
	p.logger.Info("[processor] CSV file %s uploaded to bucket %s (%d rows)", csvKey, p.destBucket, len(records))

	if p.sink != nil {
		if err := p.sink.WriteRecords(ctx, records); err != nil {
			p.logger.Error("[processor] Row sink failed for %s: %v", csvKey, err)
		}
	}

	p.summary.Log(p.summary.Generate(records))

	return models.Result{Status: models.StatusProcessed, CSVFilename: csvKey}, nil
}
