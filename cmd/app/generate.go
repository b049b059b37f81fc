package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/exports"
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/render"
	"github.com/pwnholic/taskcard/internal/task"
)

type generateCard struct {
	pipeline    *exports.Pipeline
	submitDelay time.Duration
	logo        image.Image
}

func newGenerateCard(pipeline *exports.Pipeline, submitDelay time.Duration, logo image.Image) *generateCard {
	return &generateCard{pipeline: pipeline, submitDelay: submitDelay, logo: logo}
}

func (gc *generateCard) processGenerate(ctx context.Context, flag *Flag) error {
	if len(flag.Records) < 1 {
		_, err := gc.processSingle(ctx, flag.Record, flag.Format)
		return err
	}
	return gc.processBatch(ctx, flag)
}

func (gc *generateCard) processBatch(ctx context.Context, flag *Flag) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(flag.MaxConcurrent)
	errChan := make(chan error, len(flag.Records))

	for _, rec := range flag.Records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if _, err := gc.processSingle(ctx, rec, flag.Format); err != nil {
				errChan <- fmt.Errorf("error processing %s: %w", rec.Phone, err)
			}
			return nil
		})
	}

	err := g.Wait()
	close(errChan)
	var errs []error
	for e := range errChan {
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return err
}

// processSingle submits rec through its own form and card, then exports
// the card in the requested formats.
func (gc *generateCard) processSingle(ctx context.Context, rec Record, format Format) ([]exports.Artifact, error) {
	var cardOpts []render.CardOption
	if gc.logo != nil {
		cardOpts = append(cardOpts, render.WithLogo(gc.logo))
	}
	card := render.NewCard(cardOpts...)

	ctrl := form.New(form.WithDelay(gc.submitDelay))
	ctrl.OnPublish(func(d task.TaskData) { card.Mount(d) })
	ctrl.SetFields(form.Fields{
		PhoneNumber: rec.Phone,
		JobType:     task.JobType(rec.Job),
		PriceInput:  rec.Price,
	})

	data, err := ctrl.Submit(ctx)
	if err != nil {
		return nil, err
	}
	internal.Info("Generated %s for %s, total %s", data.JobType.Label(), data.PhoneNumber, task.FormatIDR(data.Total()))

	switch format {
	case FormatPNG:
		art, err := gc.pipeline.ExportImage(ctx, card, data.PhoneNumber)
		if err != nil {
			return nil, err
		}
		return []exports.Artifact{art}, nil
	case FormatPDF:
		art, err := gc.pipeline.ExportDocument(ctx, card, data.PhoneNumber)
		if err != nil {
			return nil, err
		}
		return []exports.Artifact{art}, nil
	default:
		return gc.pipeline.ExportAll(ctx, card, data.PhoneNumber)
	}
}
