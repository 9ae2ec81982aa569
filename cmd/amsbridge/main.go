// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command amsbridge translates messages between the agent messaging protocol
// and the AMS backend protocol. By default it reads newline-delimited JSON
// frames from stdin and writes the translated frames to stdout; with --admin
// it serves the admin API instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "maunium.net/go/mauflag"

	"github.com/aiku/amsbridge/pkg/connector"
	"github.com/aiku/amsbridge/pkg/translator"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath  = flag.MakeFull("c", "config", "The path to the config file.", "config.yaml").String()
	direction   = flag.MakeFull("d", "direction", "Translation direction: outgoing (agent to backend) or incoming.", "outgoing").String()
	prettyPrint = flag.MakeFull("p", "pretty", "Pretty-print translated frames.", "false").Bool()
	serveAdmin  = flag.MakeFull("", "admin", "Serve the admin API instead of translating stdin.", "false").Bool()
	version     = flag.MakeFull("v", "version", "View amsbridge version and quit.", "false").Bool()
	wantHelp, _ = flag.MakeHelpFlag()
)

func main() {
	flag.SetHelpTitles(
		"amsbridge - translate agent messaging frames to and from the AMS backend protocol.",
		"amsbridge [-hvp] [-c <path>] [-d outgoing|incoming] [--admin]",
	)
	if err := flag.Parse(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	} else if *version {
		fmt.Printf("amsbridge %s (%s, built %s)\n", Tag, Commit, BuildTime)
		os.Exit(0)
	}

	dir, err := translator.ParseDirection(*direction)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := connector.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(10)
	}
	log, err := cfg.Logging.Compile()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(11)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)
	session := connector.NewSession(cfg, *log)

	if *serveAdmin {
		if err = session.ServeAdmin(ctx, cfg.AdminAPIAddr); err != nil {
			log.Error().Err(err).Msg("Admin API failed")
			os.Exit(2)
		}
		return
	}

	failed, err := session.Pipe(ctx, dir, os.Stdin, os.Stdout, connector.PipeOptions{Pretty: *prettyPrint})
	if err != nil {
		log.Error().Err(err).Msg("Translation stopped")
		os.Exit(2)
	}
	if failed > 0 {
		log.Warn().Int("failed", failed).Msg("Some frames could not be translated")
		os.Exit(1)
	}
}
