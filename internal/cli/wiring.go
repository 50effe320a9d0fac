package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/reelsubs/internal/cloud"
	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/logging"
	"github.com/mgpai22/reelsubs/internal/pipeline"
	"github.com/mgpai22/reelsubs/internal/storage"
	"github.com/mgpai22/reelsubs/internal/subtitle"
	"github.com/mgpai22/reelsubs/internal/transcribe"
)

// bucket access, built only when a bucket or the lambda provider needs it
func newRemote(cfg *config.Config) (*cloud.Clients, *storage.S3, error) {
	clients, err := cloud.NewClients(cfg.AWS)
	if err != nil {
		return nil, nil, err
	}
	return clients, storage.NewS3(clients.S3, storage.WithPublicRead(cfg.AWS.PublicRead)), nil
}

// assembles the resolver and its collaborators from cfg
func newResolver(ctx context.Context, cfg *config.Config, log *logging.Logger) (*pipeline.Resolver, error) {
	format, err := subtitle.ParseFormat(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}

	local := storage.NewLocal(cfg.Storage.LocalDir)
	log.Debugw("Local tier", "root", local.Root(), "format", format)

	opts := []pipeline.Option{
		pipeline.WithLocal(local),
		pipeline.WithFormat(format),
		pipeline.WithLanguage(cfg.Transcribe.Language),
		pipeline.WithGenerateTimeout(cfg.Transcribe.GenerateTimeout()),
		pipeline.WithLogger(log.Named("pipeline")),
	}
	if cfg.Transcribe.MaxCueSeconds > 0 {
		opts = append(opts, pipeline.WithSplitter(subtitle.NewReelSplitter(cfg.Transcribe.MaxCueSeconds)))
	}

	deps := transcribe.Deps{Logger: log.Named("transcribe")}
	if cfg.AWS.Bucket != "" || cfg.Transcribe.Provider == config.ProviderLambda {
		clients, s3store, err := newRemote(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithRemote(s3store))
		deps.Lambda = clients.Lambda
		deps.Store = s3store
	}

	tr, err := transcribe.Factory(ctx, cfg.Transcribe, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	opts = append(opts, pipeline.WithTranscriber(tr))

	return pipeline.NewResolver(opts...), nil
}
