package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	jagdlogcmd "github.com/wieslogic/jagdlog/internal/cmd/jagdlog"
)

func main() {
	cfg, err := jagdlogcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[JAGDLOG] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := jagdlogcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("engine runtime: %v", err)
	}
}
