// Package delivery assembles the configured artifact sinks.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/clients"
	"github.com/pwnholic/taskcard/internal/config"
	"github.com/pwnholic/taskcard/internal/exports"
)

// Build returns a sink that writes into cfg.Export.OutputDir and, when
// configured, uploads to S3 and posts to the webhook. The returned
// close func releases the webhook client.
func Build(ctx context.Context, cfg *config.Config) (exports.Sink, func() error, error) {
	dir, err := exports.NewDirSink(cfg.Export.OutputDir)
	if err != nil {
		return nil, nil, err
	}
	sinks := exports.MultiSink{dir}
	closers := []func() error{}

	if cfg.S3.Enabled() {
		s3Sink, err := exports.NewS3Sink(ctx, exports.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 sink: %w", err)
		}
		sinks = append(sinks, s3Sink)
		internal.Info("Uploading artifacts to s3://%s", cfg.S3.Bucket)
	}

	if cfg.Webhook.URL != "" {
		opts := clients.DefaultHTTPClientOptions()
		opts.RetryCount = cfg.Webhook.Retries
		hook, err := clients.NewWebhookSink(cfg.Webhook.URL, opts)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, hook)
		closers = append(closers, hook.Close)
		internal.Info("Posting artifacts to %s", cfg.Webhook.URL)
	}

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	if len(sinks) == 1 {
		return dir, closeAll, nil
	}
	return sinks, closeAll, nil
}
