package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/bloom"
	"ondc-conformance/internal/config"
	"ondc-conformance/internal/httpapi"
	"ondc-conformance/internal/kstream"
	"ondc-conformance/internal/logging"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/processing"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/reports"
	"ondc-conformance/internal/schemagate"
	"ondc-conformance/internal/seqstore"
)

type anchorStore interface {
	anchor.Source
	anchor.Sink
}

func main() {
	configPath := flag.String("config", os.Getenv("ONDC_CONFIG"), "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		zap.S().Fatalf("ondc-conformance: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tables, err := refdata.Load(cfg.RefData.Dir, refdata.Options{
		DomainCacheSize: cfg.RefData.DomainCacheSize,
		Policy:          refdata.MissingDomainPolicy(cfg.RefData.MissingDomainPolicy),
	})
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Sequence.Backend == "redis" || cfg.Anchor.Source == "redis" || cfg.Bloom.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
	}

	store, err := sequenceStore(ctx, cfg.Sequence, rdb)
	if err != nil {
		return err
	}
	var anchors anchorStore
	if cfg.Anchor.Source == "redis" {
		anchors = anchor.NewRedisSource(rdb, cfg.Anchor.RedisKey)
	} else {
		anchors = anchor.NewFileSource(cfg.Anchor.File)
	}

	engine := processing.NewEngine(
		schemagate.New(tables, schemagate.WithFanOutLimit(cfg.FanOut.Limit)),
		seqstore.NewSequencer(store, model.DefaultLifecycle, model.StageCancelled),
		anchors,
	)
	reportStore := reports.NewStore(cfg.Reports.Dir)

	if cfg.Kafka.Enabled {
		consumer := &kstream.Consumer{Engine: engine, Reports: reportStore}
		reader := kstream.NewReader(cfg.Kafka.Broker, cfg.Kafka.RequestTopic, cfg.Kafka.GroupID)
		defer reader.Close()
		consumer.Reader = reader
		if cfg.Kafka.ResultTopic != "" {
			writer := kstream.NewWriter(cfg.Kafka.Broker, cfg.Kafka.ResultTopic)
			defer writer.Close()
			consumer.Results = writer
		}
		if cfg.Bloom.Enabled {
			filter := bloom.NewFilter(rdb, cfg.Bloom.Key, cfg.Bloom.ErrorRate, cfg.Bloom.Capacity)
			filter.Reserve(ctx)
			consumer.Dedupe = filter
		}
		go func() {
			if err := consumer.Run(ctx); err != nil {
				zap.S().Errorf("kafka consumer stopped: %v", err)
			}
		}()
	}

	r := mux.NewRouter()
	api := &httpapi.Server{Engine: engine, Anchors: anchors, Reports: reportStore, History: reportStore}
	api.RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		zap.S().Info("shutting down")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
		defer done()
		_ = server.Shutdown(shutdownCtx)
	}()

	zap.S().Infow("ondc-conformance listening", "addr", cfg.HTTP.Addr, "sequence_backend", cfg.Sequence.Backend, "anchor_source", cfg.Anchor.Source)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func sequenceStore(ctx context.Context, cfg config.Sequence, rdb *redis.Client) (seqstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return seqstore.NewMemoryStore(), nil
	case "redis":
		return seqstore.NewRedisStore(rdb, cfg.RedisKey, cfg.MaxRetries), nil
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return seqstore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, cfg.MaxRetries), nil
	default:
		return seqstore.NewFileStore(cfg.Dir)
	}
}
