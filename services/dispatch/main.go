// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianRoute/pkg/logging"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/catalog"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/middleware"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/observability"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/routes"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("dispatch-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("DISPATCH_PORT")
	if port == "" {
		port = "12240"
	}

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "dispatch",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.NewDispatchMetrics(prometheus.DefaultRegisterer)

	// --- Load the action catalog ---
	manifestPath := os.Getenv("DISPATCH_MANIFEST")
	var col *selection.Collection
	if manifestPath != "" {
		col, err = catalog.LoadFile(manifestPath)
		if err != nil {
			log.Fatalf("FATAL: Could not load the action manifest: %v", err)
		}
		slog.Info("Loaded action manifest", "path", manifestPath,
			"actions", len(col.Actions), "version", col.Version)
	} else {
		col = catalog.DefaultCollection()
		slog.Warn("DISPATCH_MANIFEST is not set, serving the embedded default manifest")
	}
	store := catalog.NewStore(col)
	metrics.ActionsCurrent.Set(float64(len(col.Actions)))

	cache := selection.NewCache(store)
	cache.OnRebuild = metrics.TableRebuildsTotal.Inc
	if _, err := cache.Current(); err != nil {
		log.Fatalf("FATAL: Could not build the selection table: %v", err)
	}

	// --- Hot reload when a file-backed manifest changes ---
	if manifestPath != "" {
		watcher, err := catalog.NewWatcher(manifestPath, store, &catalog.WatcherOptions{
			OnReload: func(version string, err error) {
				metrics.ObserveReload(err)
				if err != nil {
					return
				}
				if snap, snapErr := store.Snapshot(); snapErr == nil {
					metrics.ActionsCurrent.Set(float64(len(snap.Actions)))
				}
			},
		})
		if err != nil {
			log.Fatalf("FATAL: Could not create the manifest watcher: %v", err)
		}
		if err := watcher.Start(context.Background()); err != nil {
			log.Fatalf("FATAL: Could not watch the action manifest: %v", err)
		}
		defer watcher.Stop()
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("dispatch-service"))
	router.Use(middleware.RequestID())

	routes.SetupRoutes(router, cache, store, metrics)

	log.Println("Starting the dispatch server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
