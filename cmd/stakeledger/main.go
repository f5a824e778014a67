// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/admin"
	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/cmd/stakeledger/scenario"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/staking/env"
	"github.com/vechain/stakeledger/staking/globalstats"
	"github.com/vechain/stakeledger/staking/pool"
	"github.com/vechain/stakeledger/staking/snapshot"
	"github.com/vechain/stakeledger/staking/store"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakeledger",
		Usage:     "Staking ledger with fixed-term and open-term pools",
		Copyright: "2026 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			verbosityFlag,
			jsonLogsFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "run",
				Usage: "replay a scenario against a fresh ledger",
				Flags: []cli.Flag{
					scenarioFlag,
					dataDirFlag,
					persistFlag,
					progressFlag,
					cacheFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: runAction,
			},
			{
				Name:  "serve",
				Usage: "serve a saved ledger over HTTP",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiHistoryLimitFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					enableMetricsFlag,
					systemClockFlag,
					skipNTPFlag,
					enableAdminFlag,
					adminAddrFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: serveAction,
			},
			{
				Name:  "inspect",
				Usage: "print a saved ledger",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					dumpFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: inspectAction,
			},
			{
				Name:      "diff",
				Usage:     "compare the saved ledgers of two data directories",
				ArgsUsage: "<other-data-dir>",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: diffAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)

	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		return errors.Errorf("missing --%s", scenarioFlag.Name)
	}
	sc, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}
	runner, err := scenario.NewRunner(sc)
	if err != nil {
		return err
	}
	defer runner.Ledger.Close()

	var journal *journalWriter
	if ctx.Bool(persistFlag.Name) {
		dataDir := makeDataDir(ctx)
		opLog, err := openOpLog(dataDir)
		if err != nil {
			return err
		}
		defer func() { logger.Info("closing operation journal..."); opLog.Close() }()
		// a replay starts a new ledger, and so a new journal
		if err := opLog.Truncate(context.Background()); err != nil {
			return err
		}
		journal = newJournalWriter(opLog, runner.Ledger.Core)
	}

	onStep := func(res scenario.Result) {
		logger.Debug("step", "n", res.Step, "op", res.Op, "account", res.Account, "pool", res.Pool, "at", res.At, "amount", res.Amount, "err", res.Err)
	}
	if ctx.Bool(progressFlag.Name) {
		bar := pb.New64(int64(len(sc.Steps))).
			Set64(0).
			SetMaxWidth(90).
			Start()
		defer func() { bar.Finish() }()
		onStep = func(scenario.Result) { bar.Add64(1) }
	}

	results, err := runner.Run(onStep)
	if journal != nil {
		if jerr := journal.Close(); jerr != nil && err == nil {
			err = jerr
		}
	}
	if err != nil {
		return err
	}
	logger.Info("scenario passed", "name", sc.Name, "steps", len(results), "time", runner.Clock.Now())

	if !ctx.Bool(persistFlag.Name) {
		return nil
	}
	db, err := openSnapshotDB(ctx, makeDataDir(ctx))
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing snapshot database..."); db.Close() }()

	config, err := runner.Ledger.Config()
	if err != nil {
		return err
	}
	return runner.Ledger.View(func(st *store.State) error {
		return snapshot.Save(db, snapshot.Header{
			Variant: runner.Ledger.Variant(),
			Config:  config,
			SavedAt: runner.Clock.Now(),
		}, st)
	})
}

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()
	logLevel := initLogger(ctx)
	// before any meter is loaded
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := makeDataDir(ctx)
	db, err := openSnapshotDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing snapshot database..."); db.Close() }()

	h, st, err := snapshot.Load(db)
	if err != nil {
		return err
	}

	var clock env.Clock = env.NewManualClock(h.SavedAt)
	if ctx.Bool(systemClockFlag.Name) {
		clock = env.SystemClock{}
		if !ctx.Bool(skipNTPFlag.Name) {
			checkClockOffset()
		}
	}
	// the served ledger rejects every mutation
	l, err := scenario.Open(h.Variant, h.Config, st, env.Env{
		Transport:  env.DenyTransport{},
		Gate:       env.Closed{},
		Authorizer: env.NewAdmins(),
		Clock:      clock,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	opLog, err := openOpLog(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing operation journal..."); opLog.Close() }()

	enableAPILogs := &atomic.Bool{}
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, closeAPI := api.New(l, opLog, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Int(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		HistoryLimit:         ctx.Uint64(apiHistoryLimitFlag.Name),
	})
	defer closeAPI()

	ledgerHealth := health.New(opLog)
	ledgerHealth.SnapshotLoaded(h.Variant, h.SavedAt, l.Seq())
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeAdmin, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, enableAPILogs, ledgerHealth)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeAdmin() }()
		logger.Info("admin server started", "url", url)
	}
	if status, err := ledgerHealth.Status(context.Background()); err != nil {
		return err
	} else if !status.JournalSynced {
		logger.Warn("journal is behind the snapshot", "journal", status.JournalSeq, "snapshot", l.Seq())
	}

	srv, listener, err := newAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	logger.Info("serving ledger",
		"variant", h.Variant,
		"savedAt", h.SavedAt,
		"api", "http://"+listener.Addr().String()+"/",
		"journal", opLog.Path(),
		"sqlite", opLog.DriverVersion())

	exitCtx := handleExitSignal()
	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)

	db, err := openSnapshotDB(ctx, makeDataDir(ctx))
	if err != nil {
		return err
	}
	defer db.Close()

	h, st, err := snapshot.Load(db)
	if err != nil {
		return err
	}
	if ctx.Bool(dumpFlag.Name) {
		state, err := dumpState(st)
		if err != nil {
			return err
		}
		dumpConfig.Fdump(os.Stdout, h)
		fmt.Print(state)
		return nil
	}

	l, err := scenario.Open(h.Variant, h.Config, st, env.Env{
		Transport:  env.DenyTransport{},
		Gate:       env.Closed{},
		Authorizer: env.NewAdmins(),
		Clock:      env.NewManualClock(h.SavedAt),
	})
	if err != nil {
		return err
	}
	defer l.Close()

	out := struct {
		Version uint               `json:"version"`
		Variant string             `json:"variant"`
		SavedAt uint64             `json:"savedAt"`
		Config  string             `json:"config"`
		Pools   []pool.Pool        `json:"pools"`
		Stats   globalstats.Totals `json:"stats"`
	}{
		Version: h.Version,
		Variant: h.Variant,
		SavedAt: h.SavedAt,
		Config:  string(h.Config),
		Pools:   l.Pools(),
		Stats:   l.ProtocolStats(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func diffAction(ctx *cli.Context) error {
	initLogger(ctx)

	if ctx.NArg() != 1 {
		return errors.New("expected the other data directory")
	}
	a, err := dumpSnapshot(ctx, makeDataDir(ctx))
	if err != nil {
		return err
	}
	b, err := dumpSnapshot(ctx, filepath.Clean(ctx.Args().First()))
	if err != nil {
		return err
	}
	diff, err := unifiedDiff(a, b, ctx.String(dataDirFlag.Name), ctx.Args().First())
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Println("ledgers are identical")
		return nil
	}
	fmt.Print(diff)
	return errors.New("ledgers differ")
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
