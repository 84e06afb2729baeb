package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/api"
	"github.com/rupestre-campos/pi-world-radio/internal/cache"
	"github.com/rupestre-campos/pi-world-radio/internal/catalog"
	"github.com/rupestre-campos/pi-world-radio/internal/config"
	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
	"github.com/rupestre-campos/pi-world-radio/internal/journal"
	"github.com/rupestre-campos/pi-world-radio/internal/player"
	"github.com/rupestre-campos/pi-world-radio/internal/selection"
	"github.com/rupestre-campos/pi-world-radio/internal/service"
	"github.com/rupestre-campos/pi-world-radio/internal/session"
	"github.com/rupestre-campos/pi-world-radio/internal/station"
	"github.com/rupestre-campos/pi-world-radio/internal/ui"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	plainFlag   = flag.Bool("plain", false, "Use plain line prompts instead of the full-screen UI")
	refreshFlag = flag.Bool("refresh", false, "Fetch the station directory even if the cached copy is fresh")
	playerFlag  = flag.String("player", "", "Playback backend: mpv or native (overrides config)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
		fmt.Fprintf(os.Stderr, "Environment overrides use the %s prefix, e.g. %sVOLUME=50.\n", config.EnvPrefix, config.EnvPrefix)
		fmt.Fprintf(os.Stderr, "\nProject: %s\n", config.AppProjectURL)
	}
}

// refreshLoader always fetches the directory before falling back to the
// snapshot.
type refreshLoader struct {
	cache *catalog.Cache
}

func (r refreshLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	return r.cache.Refresh(ctx)
}

func setupLogging(debug bool) {
	if !debug {
		// Avoid corrupting the terminal by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
	}
	logPath := filepath.Join(cacheDir, "debug.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
		logFile = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	fmt.Printf("Debug log: %s\n", logPath)
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		fmt.Println(config.AppProjectURL)
		os.Exit(0)
	}

	setupLogging(*debugFlag)

	envFiles := []string{".env"}
	if configPath, err := config.GetConfigPath(); err == nil {
		envFiles = append(envFiles, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	} else if configPath, pathErr := config.GetConfigPath(); pathErr == nil {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			if saveErr := cfg.Save(); saveErr != nil {
				log.Warn().Err(saveErr).Msg("Failed to write default config")
			}
		}
	}
	if *playerFlag != "" {
		cfg.Player = *playerFlag
	}

	paths, err := cfg.Paths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Debug().
		Str("catalog", paths.Catalog).
		Str("history", paths.History).
		Str("favorites", paths.Favorites).
		Str("player", cfg.Player).
		Msg("Configuration loaded")

	prompter := ui.NewPrompter(cfg, *plainFlag, os.Stdin, os.Stdout)

	gateway, err := player.New(player.Options{
		Backend:   cfg.Player,
		MPVPath:   cfg.MPVPath,
		Volume:    cfg.Volume,
		UserAgent: config.AppName + "/" + config.AppVersion,
		OnTitle: func(title string) {
			prompter.Notify("Now playing: " + title)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fetcher := fetch.NewClient(cfg.FetchOptions())
	directory := api.NewGardenClient(fetcher, cfg.APIBase)
	catalogCache := catalog.NewCache(directory, cache.NewFile(paths.Catalog, cfg.CatalogMaxAge))

	var loader service.CatalogLoader = catalogCache
	if *refreshFlag {
		loader = refreshLoader{cache: catalogCache}
	}
	live := service.NewStationService(loader, station.NewLister(directory))

	s := session.New(session.Options{
		Live:       live,
		History:    journal.New(paths.History),
		Favorites:  journal.New(paths.Favorites),
		Streams:    station.NewStreamBuilder(cfg.StreamBase, cfg.StreamExt),
		Player:     gateway,
		Prompter:   prompter,
		Resolver:   selection.NewResolver(nil),
		Journaling: cfg.HistoryEnabled,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := s.Run(context.Background(), sigChan); err != nil {
		log.Error().Err(err).Msg("Session failed")
		fmt.Fprintf(os.Stderr, "Error: %s\n", ui.FriendlyError(err))
		os.Exit(1)
	}

	fmt.Println("Exiting")
	log.Info().Msgf("%s stopped", config.AppName)
}
