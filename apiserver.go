// Copyright 2026 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of COQPIPE.
//
//  COQPIPE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  COQPIPE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with COQPIPE.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"coqpipe/cnf"
	"coqpipe/corpus/handlers"
	"coqpipe/general"
	"coqpipe/monitoring"
	monitoringActions "coqpipe/monitoring/handlers"
	"coqpipe/openapi"
	"coqpipe/rdb"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type apiServer struct {
	server    *http.Server
	conf      *cnf.Conf
	radapter  *rdb.Adapter
	jobLogger *monitoring.WorkerJobLogger
	version   general.VersionInfo
}

func mkServerInfo(conf *cnf.Conf, version general.VersionInfo) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			map[string]any{
				"name":      "CoqPipe",
				"version":   version,
				"publicUrl": conf.PublicURL,
			},
		)
	}
}

// router maps the HTTP API. Corpus routes go through Redis to workers,
// monitoring routes are served from the local job logger.
func (api *apiServer) router() *gin.Engine {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		additionalLogEvents(),
		logging.GinMiddleware(),
		uniresp.AlwaysJSONContentType(),
		corsMiddleware(api.conf.CorsAllowedOrigins),
	)
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	engine.GET("/", mkServerInfo(api.conf, api.version))
	engine.GET("/openapi", openapi.MkHandleRequest(api.conf, api.version.Version, "/openapi"))

	actions := handlers.NewActions(
		api.conf.Resources,
		api.radapter,
		api.jobLogger,
		time.Duration(api.conf.WorkerTimeoutSecs)*time.Second,
	)
	engine.GET("/resources", actions.Resources)
	engine.GET("/resources/:resourceId", actions.ResourceInfo)
	engine.POST("/process/:resourceId", actions.Process)
	engine.POST("/arrange/:resourceId", actions.Arrange)
	engine.GET("/cell/:resourceId", actions.CellContent)
	engine.POST("/headers/:resourceId", actions.TranslateHeaders)

	monActions := monitoringActions.NewActions(api.jobLogger)
	mon := engine.Group("/monitoring")
	mon.GET("/workers-load", monActions.WorkersLoad)
	mon.GET("/workers-load/:workerId", monActions.SingleWorkerLoad)
	mon.GET("/recent-records", monActions.RecentRecords)
	mon.GET("/call-stats", monActions.CallStats)
	return engine
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}
	addr := fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      api.router(),
		Addr:         addr,
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	log.Info().Str("addr", addr).Msg("starting HTTP API server")
	go func() {
		if err := api.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down CoqPipe HTTP API server")
	return api.server.Shutdown(ctx)
}

// runServices starts all the services and stops them once
// the context is cancelled
func runServices(ctx context.Context, services []service) {
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}

func runApiServer(conf *cnf.Conf, version general.VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	defer radapter.Close()
	err := radapter.TestConnection(redisConnectionTestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}
	var statusWriter monitoring.StatusWriter = &monitoring.NullStatusWriter{}
	services := make([]service, 0, 3)
	if conf.Monitoring != nil {
		tsWriter, err := monitoring.NewTimescaleDBWriter(
			ctx, conf.Monitoring.DB, conf.TimezoneLocation())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize TimescaleDB writer")
			return
		}
		statusWriter = tsWriter
		services = append(services, tsWriter)
		log.Info().Msg("enabled export of job statistics to TimescaleDB")
	}
	jobLogger := monitoring.NewWorkerJobLogger(statusWriter)
	server := &apiServer{
		conf:      conf,
		radapter:  radapter,
		jobLogger: jobLogger,
		version:   version,
	}
	services = append(services, jobLogger, server)
	runServices(ctx, services)
}
