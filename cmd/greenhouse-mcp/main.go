package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/greenhouse/internal/config"
	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	ghmcp "github.com/peterkuimelis/greenhouse/internal/mcp"
	"github.com/peterkuimelis/greenhouse/internal/mod"
	"github.com/peterkuimelis/greenhouse/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "greenhouse.yaml", "path to config file")
	noSaves := flag.Bool("no-saves", false, "disable the save tools")
	flag.Parse()

	if err := run(*cfgPath, *noSaves); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string, noSaves bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// stdout carries the protocol; mod reports go to stderr.
	catalog, _, err := mod.BuildCatalog(cfg.ModsDir, log.NewTextLogger(os.Stderr))
	if err != nil {
		return err
	}

	var tutorial *game.TutorialScript
	if cfg.Tutorial != "" {
		if tutorial, err = config.LoadTutorial(cfg.Tutorial); err != nil {
			return err
		}
	}

	var store *storage.Store
	if !noSaves {
		if store, err = storage.Open(cfg.SaveDB); err != nil {
			return err
		}
		defer store.Close()
	}

	s := server.NewMCPServer("greenhouse", "1.0.0")
	ghmcp.NewGameSession(cfg, catalog, store, tutorial).RegisterTools(s)

	return server.ServeStdio(s)
}
