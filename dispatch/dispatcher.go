package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"listings-pipeline/models"
	"listings-pipeline/utils"
)

// Archiver is the download stage.
type Archiver interface {
	Run(ctx context.Context) (models.Result, error)
}

// Processor is the parse stage.
type Processor interface {
	Run(ctx context.Context, bucket, key string) (models.Result, error)
}

// Dispatcher routes one trigger to the stage it selects.
type Dispatcher struct {
	archiver  Archiver
	processor Processor
	logger    *utils.Logger
}

func New(archiver Archiver, processor Processor, logger *utils.Logger) *Dispatcher {
	return &Dispatcher{archiver: archiver, processor: processor, logger: logger}
}

// Handle decodes payload and runs the matching stage.
func (d *Dispatcher) Handle(ctx context.Context, payload json.RawMessage) (models.Result, error) {
	trigger, err := DecodeTrigger(payload)
	if err != nil {
		d.logger.Error("[dispatch] %v", err)
		return models.Result{}, err
	}

	switch t := trigger.(type) {
	case ParseTrigger:
		d.logger.Info("[dispatch] Storage notification for %s/%s, parsing", t.Bucket, t.Key)
		return d.processor.Run(ctx, t.Bucket, t.Key)
	case FetchTrigger:
		if t.Fallback != "" {
			d.logger.Warn("[dispatch] Falling back to download: %s", t.Fallback)
		} else {
			d.logger.Info("[dispatch] No storage notification, downloading")
		}
		return d.archiver.Run(ctx)
	default:
		return models.Result{}, fmt.Errorf("dispatch: unknown trigger %T", trigger)
	}
}
