package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/calehh/counterflag/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve counter-vote requests and the run log over HTTP",
	Args:  cobra.ExactArgs(0),
	Run:   serveRun,
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address, overrides service.listen_addr")
}

func serveRun(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		cfg.Service.ListenAddr = addr
	}
	logger := newLogger(cfg)

	a, err := app.NewCounterApp(cfg, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}
	defer func() {
		log.Println("shut down...")
		a.Stop()
	}()

	svc := a.NewService()
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start()
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	select {
	case <-c:
	case err := <-errCh:
		logger.Error("service stopped", "err", err)
	}
}
