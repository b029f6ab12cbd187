// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/questforge/forge/api"
	"github.com/questforge/forge/cmd/forge/solo"
	"github.com/questforge/forge/genesis"
	"github.com/questforge/forge/log"
	"github.com/questforge/forge/logdb"
	"github.com/questforge/forge/lvldb"
	"github.com/questforge/forge/metrics"
	"github.com/questforge/forge/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "forge")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	soloFlags := []cli.Flag{
		dataDirFlag,
		cacheFlag,
		genesisFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiBacktraceLimitFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		onDemandFlag,
		blockIntervalFlag,
	}
	app := cli.App{
		Version: fullVersion(),
		Name:    "Forge",
		Usage:   "Node of the QuestForge quest platform",
		Flags:   soloFlags,
		Action:  soloAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "standalone node sealing blocks on its own",
				Flags:  soloFlags,
				Action: soloAction,
			},
			{
				Name:   "default-config",
				Usage:  "print the devnet genesis config as YAML",
				Action: defaultConfigAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigAction(ctx *cli.Context) error {
	data, err := genesis.DefaultConfig().Marshal()
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(data)
	return err
}

func soloAction(ctx *cli.Context) error {
	log.Setup(os.Stderr, ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	exitSignal := handleExitSignal()

	gen, err := loadGenesis(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}

	db, logDB, err := openDatabases(ctx.String(dataDirFlag.Name), ctx.Int(cacheFlag.Name))
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing databases...")
		logDB.Close()
		db.Close()
	}()

	rt, err := runtime.New(db, gen, runtime.Options{Logs: logDB})
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := checkGenesis(rt, gen); err != nil {
		return err
	}
	if err := syncLogDB(exitSignal, rt, logDB); err != nil {
		return err
	}

	enableAPILogs := &atomic.Bool{}
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	apiHandler, apiCloser := api.New(rt, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       uint32(ctx.Uint(apiBacktraceLimitFlag.Name)),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger:      enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
	})
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	best := rt.Best()
	logger.Info("node started", "genesis", gen.Name(), "best", best.Number, "api", apiURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return solo.New(rt, solo.Options{
			OnDemand:      ctx.Bool(onDemandFlag.Name),
			BlockInterval: ctx.Uint64(blockIntervalFlag.Name),
		}).Run(groupCtx)
	})
	return group.Wait()
}

func loadGenesis(path string) (*genesis.Genesis, error) {
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, "load genesis config")
	}
	return cfg.Genesis(filepath.Base(path))
}

func openDatabases(dataDir string, cacheMiB int) (*lvldb.LevelDB, *logdb.LogDB, error) {
	if dataDir == "" {
		db, err := lvldb.NewMem()
		if err != nil {
			return nil, nil, err
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, logDB, nil
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	db, err := lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{CacheMiB: cacheMiB})
	if err != nil {
		return nil, nil, errors.Wrap(err, "open chain database")
	}
	logDB, err := logdb.New(filepath.Join(dataDir, "logs.db"))
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "open log database")
	}
	logger.Info("databases opened", "dir", dataDir, "sqlite", logDB.DriverVersion())
	return db, logDB, nil
}

// checkGenesis rejects a data dir initialized from another genesis.
func checkGenesis(rt *runtime.Runtime, gen *genesis.Genesis) error {
	blk, err := rt.Block(0)
	if err != nil {
		return err
	}
	if blk == nil || blk.Header.ID != gen.ID() {
		return errors.New("genesis mismatch: the data dir was initialized with another genesis")
	}
	return nil
}
