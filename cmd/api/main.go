package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/tia-gather/gatherd/api/server"
	"github.com/tia-gather/gatherd/api/service"
	"github.com/tia-gather/gatherd/cmd"
	"github.com/tia-gather/gatherd/cmd/runtime/version"
	"github.com/tia-gather/gatherd/config"
)

func main() {
	app := cli.App{
		Name:    "gatherd",
		Usage:   "api service for the money gathering app on celestia",
		Action:  exec,
		Version: version.Get(),
		Flags: []cli.Flag{
			cmd.ConfigPathFlag,
			cmd.VerbosityFlag,
			cmd.LogFormatFlag,
		},
	}

	app.Before = func(ctx *cli.Context) error {
		logLvl, err := log.ParseLevel(ctx.String(cmd.VerbosityFlag.Name))
		if err != nil {
			return err
		}

		logFmt, err := log.ParseFormat(ctx.String(cmd.LogFormatFlag.Name))
		if err != nil {
			return err
		}

		return log.Init(logLvl, logFmt)
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running api application failed", "error", err)
	}
}

func exec(ctx *cli.Context) error {
	cfg := &config.Config{}
	if err := config.Load(ctx.String(cmd.ConfigPathFlag.Name), cfg); err != nil {
		log.Fatal("fail on read config", "error", err)
	}

	log.Info("starting gatherd api",
		"port", cfg.Port,
		"onchaindb", cfg.OnChainDB.Endpoint,
		"chain_id", cfg.Celestia.ChainID,
	)

	server.New(cfg.Port, service.New(cfg)).Run()
	return nil
}
