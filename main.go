/*
 * Copyright 2026 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/api"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/bundles"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/credentials"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/drives"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/jobs"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/releases"
	releases_git "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/releases/git"
	releases_github "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/releases/github"
	"github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/resolver"
	sync_hdl "github.com/SENERGY-Platform/bundle-manager/pkg/components/handler/sync"
	helper_http "github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/http"
	helper_os_signal "github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/os_signal"
	helper_time "github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/time"
	"github.com/SENERGY-Platform/bundle-manager/pkg/configuration"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/bundle-manager/pkg/models/slog_attr"
	"github.com/SENERGY-Platform/bundle-manager/pkg/service"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
)

var version string

func main() {
	ec := 0
	defer func() {
		os.Exit(ec)
	}()

	srvInfoHdl := srv_info_hdl.New("bundle-manager", version)

	configuration.ParseFlags()

	config, err := configuration.New(configuration.ConfPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		ec = 1
		return
	}

	helper_time.UTC = config.UseUTC

	logger := struct_logger.New(config.Logger, os.Stderr, "", srvInfoHdl.Name())

	logger.Info("starting service", slog_attr.VersionKey, srvInfoHdl.Version(), slog_attr.ConfigValuesKey, sb_config_hdl.StructToMap(config, true))

	ctx, cf := context.WithCancel(context.Background())
	defer cf()

	credentials.InitLogger(logger)
	credentialsHdl := credentials.New(config.Credentials)

	bundles.InitLogger(logger)
	bundlesHdl := bundles.New(config.Bundles)
	if err = bundlesHdl.Init(); err != nil {
		logger.Error("initializing bundle cache failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	drives.InitLogger(logger)
	drivesHdl := drives.New(config.Drives)

	sync_hdl.InitLogger(logger)
	syncHdl := sync_hdl.New()

	gitHubClt := releases_github.NewClient(helper_http.NewClient(config.Releases.GitHub.Timeout), config.Releases.GitHub.BaseUrl, credentialsHdl)
	var sources []releases.Source
	for _, repo := range config.Releases.GitHub.Repositories {
		sources = append(sources, releases_github.New(repo.Name, gitHubClt, repo.Owner, repo.Repo, repo.TitleSuffix, config.Releases.GitHub.PerPage))
	}
	for _, repo := range config.Releases.Git.Repositories {
		sources = append(sources, releases_git.New(repo.Name, repo.URL, repo.TitlePrefix, config.Releases.Git.Timeout))
	}
	releases.InitLogger(logger)
	releasesHdl := releases.New(config.Bundles.CacheRoot, sources...)

	ccHandler := ccjh.New(config.Jobs.BufferSize)
	jobsHdl := jobs.New(ctx, ccHandler)

	service.InitLogger(logger)
	srv := service.New(bundlesHdl, drivesHdl, resolver.New(), syncHdl, releasesHdl, credentialsHdl, jobsHdl)

	srv.Events().JobFinished.Subscribe(func(job models_job.Job) {
		if job.Error != nil {
			logger.Error("job failed", slog_attr.JobIDKey, job.ID, slog_attr.ErrorKey, job.Error.Message)
			return
		}
		logger.Info("job completed", slog_attr.JobIDKey, job.ID)
	})

	httpApi, err := api.New(
		srv,
		srvInfoHdl,
		logger,
		api.Config{
			AccessLog: config.HttpAccessLog,
			LocalOnly: config.HttpLocalOnly,
		},
	)
	if err != nil {
		logger.Error("creating http engine failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	httpServer := &http.Server{Handler: httpApi.Handler()}
	serverListener, err := net.Listen("tcp", net.JoinHostPort(config.ServerHost, strconv.FormatInt(int64(config.ServerPort), 10)))
	if err != nil {
		logger.Error("creating server listener failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	if err = srv.InitBundles(ctx); err != nil {
		logger.Error("indexing bundles failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	if err = srv.InitDevices(ctx); err != nil {
		logger.Error("indexing devices failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	go func() {
		helper_os_signal.Wait(ctx, logger, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		cf()
	}()

	wg := &sync.WaitGroup{}

	if err = ccHandler.RunAsync(config.Jobs.MaxNumber, time.Duration(config.Jobs.JHInterval*1000)); err != nil {
		logger.Error("starting job handler failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		ccHandler.Stop()
		logger.Info("job handler stopped")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Duration(config.Jobs.PJHInterval))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := jobsHdl.PurgeJobs(time.Duration(config.Jobs.MaxAge)); n > 0 {
					logger.Debug("purged jobs", slog_attr.CountKey, n)
				}
			}
		}
	}()

	go func() {
		logger.Info("starting http server")
		if err := httpServer.Serve(serverListener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("starting server failed", slog_attr.ErrorKey, err)
			ec = 1
		}
		cf()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("stopping http server")
		ctxWt, cf2 := context.WithTimeout(context.Background(), time.Second*5)
		defer cf2()
		if err := httpServer.Shutdown(ctxWt); err != nil {
			logger.Error("stopping server failed", slog_attr.ErrorKey, err)
			ec = 1
		} else {
			logger.Info("http server stopped")
		}
	}()

	wg.Wait()
}
