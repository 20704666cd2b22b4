package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"business-recommender/handler"
	"business-recommender/internal/config"
	"business-recommender/internal/integrations/paramstore"
	"business-recommender/internal/integrations/yelp"
	"business-recommender/internal/repository"
	"business-recommender/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	yelpClient, err := yelp.NewClient(ssmClient, cfg.YelpTokenParameter,
		yelp.WithBaseURL(cfg.YelpBaseURL),
		yelp.WithLimit(cfg.YelpSearchLimit),
		yelp.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create Yelp client", "err", err)
		os.Exit(1)
	}

	backend, err := newBackend(awsCfg, cfg)
	if err != nil {
		slog.Error("failed to create document backend", "err", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	store, err := repository.NewStore(backend, logger)
	if err != nil {
		slog.Error("failed to create document store", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	svc, err := usecase.NewRecommendService(yelpClient, store, logger)
	if err != nil {
		slog.Error("failed to create recommend service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func newBackend(awsCfg aws.Config, cfg config.Config) (repository.Backend, error) {
	if cfg.StoreBackend == config.BackendDynamoDB {
		b, err := repository.NewDynamoBackend(awsdynamodb.NewFromConfig(awsCfg), cfg.StoreContainer, cfg.StoreObject)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := repository.NewS3Backend(awss3.NewFromConfig(awsCfg), cfg.StoreContainer, cfg.StoreObject)
	if err != nil {
		return nil, err
	}
	return b, nil
}
