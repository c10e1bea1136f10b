// Copyright 2025 go-sparse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-sparse/spgemm/internal/logging"
	"github.com/go-sparse/spgemm/sparse"
	"github.com/go-sparse/spgemm/sparse/contrib/workerpool"
	"github.com/go-sparse/spgemm/sparse/mmio"
)

const envPrefix = "SPGEMM"

// app carries the state set up by the root command for its subcommands.
type app struct {
	v        *viper.Viper
	pool     *workerpool.Pool
	mp       metric.MeterProvider
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "spgemm",
		Short:         "Multithreaded sparse matrix-matrix multiplication",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./spgemm.yaml)")
	pf.Int("threads", 0, "worker threads (default: $SPGEMM_NUM_THREADS, CPU affinity, GOMAXPROCS)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", logging.LogFormatConsole, "log format: json or console")
	pf.Bool("metrics", false, "export kernel metrics to stderr when the command ends")

	root.AddCommand(newMultiplyCmd(a), newEstimateCmd(a), newMCLCmd(a))
	return root
}

// setup reads the configuration and builds the logger, pool and metrics
// provider shared by all subcommands.
func (a *app) setup(cmd *cobra.Command) error {
	v := a.v
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("spgemm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	ctx, err := logging.Init(cmd.Context(),
		logging.WithLogLevel(v.GetString("log-level")),
		logging.WithLogFormat(v.GetString("log-format")),
	)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	cmd.SetContext(ctx)

	threads := v.GetInt("threads")
	if threads <= 0 {
		threads = sparse.DefaultThreads()
	}
	a.pool = workerpool.New(threads)

	a.mp = noop.NewMeterProvider()
	if v.GetBool("metrics") {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		enc.SetIndent("", "  ")
		exp, err := stdoutmetric.New(stdoutmetric.WithEncoder(enc), stdoutmetric.WithoutTimestamps())
		if err != nil {
			return fmt.Errorf("creating metrics exporter: %w", err)
		}
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		a.mp = provider
		a.shutdown = provider.Shutdown
	}

	ctxzap.Extract(ctx).Debug("configured",
		zap.Int("threads", threads),
		zap.String("config_file", v.ConfigFileUsed()),
		zap.Bool("metrics", v.GetBool("metrics")),
	)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	a.pool.Close()
	if a.shutdown != nil {
		// Shutdown flushes the periodic reader one last time.
		return a.shutdown(ctx)
	}
	return nil
}

// loadPair reads two operands concurrently and builds their column stores.
// Duplicate entries are summed.
func loadPair(pathA, pathB string) (*sparse.Dcsc[float64], *sparse.Dcsc[float64], error) {
	var a, b *sparse.Dcsc[float64]
	var g errgroup.Group
	g.Go(func() (err error) {
		a, err = loadMatrix(pathA)
		return err
	})
	g.Go(func() (err error) {
		b, err = loadMatrix(pathB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func loadMatrix(path string) (*sparse.Dcsc[float64], error) {
	_, t, err := mmio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return t.ToDcsc(func(x, y float64) float64 { return x + y }), nil
}

// outputWriter opens path for writing, or stdout for "" and "-".
func outputWriter(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
