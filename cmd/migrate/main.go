package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/obralink/obrabot/db"
	"github.com/obralink/obrabot/internal/config"
	dbpkg "github.com/obralink/obrabot/internal/db"
	"github.com/obralink/obrabot/internal/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config.toml")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config path] <up|down|version|force> [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := strings.ToLower(args[0])

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	migrations, err := db.Migrations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load migrations: %v\n", err)
		os.Exit(1)
	}
	if err := dbpkg.RunMigrate(logger.L, cfg.Postgres, migrations, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", command, err)
		os.Exit(1)
	}
}
