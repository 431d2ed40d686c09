// Command swnchess runs the engine as a UCI-style shell on stdin/stdout.
package main

import (
	"flag"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/hailam/swnchess/internal/engine"
	"github.com/hailam/swnchess/internal/logx"
	"github.com/hailam/swnchess/internal/storage"
	"github.com/hailam/swnchess/internal/uci"
)

type config struct {
	dbDir      string
	noDB       bool
	difficulty string
	depth      int
	seed       uint
	variant    string
	logLevel   string
	cpuprofile string
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.dbDir, "db", os.Getenv("SWNCHESS_DB"), "database directory (default: platform data dir)")
	flag.BoolVar(&cfg.noDB, "no-db", false, "run without saved games or preferences")
	flag.StringVar(&cfg.difficulty, "difficulty", "", "easy, medium or hard (default: saved preference)")
	flag.IntVar(&cfg.depth, "depth", 0, "fixed search depth, overriding the difficulty")
	flag.UintVar(&cfg.seed, "seed", 0, "random seed for new games (0 picks one per game)")
	flag.StringVar(&cfg.variant, "variant", "", "variant name stored with saved games")
	flag.StringVar(&cfg.logLevel, "log-level", os.Getenv("SWNCHESS_LOG"), "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.cpuprofile, "cpuprofile", os.Getenv("CPUPROFILE"), "write cpu profile to file")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	log := logx.NewLogger(os.Stderr, logx.ParseLevel(cfg.logLevel))

	// Start CPU profiling if requested (via flag or environment variable)
	if cfg.cpuprofile != "" {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cfg.cpuprofile).Msg("CPU profiling enabled")
	}

	store := openStore(cfg, log)
	if store != nil {
		defer store.Close()
	}

	eng := engine.NewEngine()
	variant := cfg.variant
	player := storage.ColorWhite
	if store != nil {
		prefs, err := store.LoadPreferences()
		if err != nil {
			log.Warn().Err(err).Msg("preferences not loaded")
		} else {
			eng.SetDifficulty(prefs.Difficulty)
			player = prefs.PlayerColor
			if variant == "" {
				variant = prefs.Variant
			}
		}
	}
	if cfg.difficulty != "" {
		d, ok := engine.ParseDifficulty(cfg.difficulty)
		if !ok {
			log.Fatal().Str("difficulty", cfg.difficulty).Msg("unknown difficulty")
		}
		eng.SetDifficulty(d)
		if store != nil {
			savePreference(store, d, log)
		}
	}
	eng.SetDepth(cfg.depth)

	log.Debug().Stringer("difficulty", eng.Difficulty()).Int("depth", eng.Depth()).
		Uint("seed", cfg.seed).Msg("engine ready")

	// Create and run UCI protocol handler
	protocol := uci.New(eng, os.Stdin, os.Stdout, uci.Config{
		Store:   store,
		Seed:    uint32(cfg.seed),
		Variant: variant,
		Player:  player,
		Logger:  log,
	})
	if err := protocol.Run(); err != nil {
		log.Error().Err(err).Msg("reading commands")
	}
}

// openStore opens the database, or returns nil when storage is disabled or
// cannot be opened.
func openStore(cfg config, log zerolog.Logger) *storage.Storage {
	if cfg.noDB {
		return nil
	}
	var (
		store *storage.Storage
		err   error
	)
	if cfg.dbDir != "" {
		store, err = storage.Open(cfg.dbDir, log)
	} else {
		store, err = storage.NewStorage(log)
	}
	if err != nil {
		log.Warn().Err(err).Msg("storage unavailable, saves disabled")
		return nil
	}
	return store
}

func savePreference(store *storage.Storage, d engine.Difficulty, log zerolog.Logger) {
	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("preferences not loaded")
		return
	}
	prefs.Difficulty = d
	if err := store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("preferences not saved")
	}
}
