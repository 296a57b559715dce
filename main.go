package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/hoshinonyaruko/cobrinha/api"
	"github.com/hoshinonyaruko/cobrinha/config"
	"github.com/hoshinonyaruko/cobrinha/engine"
	"github.com/hoshinonyaruko/cobrinha/grid"
	"github.com/hoshinonyaruko/cobrinha/hub"
	"github.com/hoshinonyaruko/cobrinha/input"
	"github.com/hoshinonyaruko/cobrinha/memimg"
	"github.com/hoshinonyaruko/cobrinha/render"
	"github.com/hoshinonyaruko/cobrinha/snake"
	"github.com/hoshinonyaruko/cobrinha/sqlite"
)

func main() {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("error loading .env file")
	}

	cmd := &cli.Command{
		Name:  "cobrinha",
		Usage: "grid snake game served over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.json",
				Usage:   "path to the JSON config file, created with defaults if missing",
				Sources: cli.EnvVars("COBRINHA_CONFIG"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the game server (default)",
				Action: serve,
			},
			{
				Name:   "best",
				Usage:  "print the stored best score",
				Action: printBest,
			},
			{
				Name:   "clear-best",
				Usage:  "delete the stored best score",
				Action: clearBest,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)
	return cfg, nil
}

func setLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("loglevel", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := EnsureFoldersExist(cfg.StaticDir, cfg.OutputDir); err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := grid.FromCanvas(cfg.Width, cfg.Height, cfg.Blocksize)
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(cfg.Blocksize, render.DefaultPalette)
	if err != nil {
		return err
	}

	h := hub.NewHub()
	go h.Run()
	defer h.Stop()

	frames := memimg.NewFrames()
	session := snake.NewSession(g, snake.WithStore(store))
	eng := engine.New(session,
		engine.Config{Speed: cfg.Speed, MaxSpeed: cfg.MaxSpeed},
		api.NewDisplay(renderer, frames, h, cfg.OutputDir))
	defer eng.Close()
	eng.Reset()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 配置文件修改后立即应用速度
	go func() {
		err := config.Watch(ctx, cmd.String("config"), func(c *config.AppConfig) {
			setLogLevel(c.LogLevel)
			eng.SetSpeed(c.Speed)
		})
		if err != nil {
			log.WithError(err).Warn("config watcher stopped")
		}
	}()

	router := api.NewRouter(api.Server{
		Game:      eng,
		Input:     input.NewAdapter(eng),
		Frames:    frames,
		Hub:       h,
		StaticDir: cfg.StaticDir,
	})
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port": cfg.Port,
			"grid": fmt.Sprintf("%dx%d", g.Cols, g.Rows),
		}).Info("cobrinha listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func printBest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := grid.FromCanvas(cfg.Width, cfg.Height, cfg.Blocksize)
	if err != nil {
		return err
	}
	best, err := snake.NewSession(g, snake.WithStore(store)).Best()
	if err != nil {
		return err
	}
	fmt.Println(best)
	return nil
}

func clearBest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(snake.BestKey); err != nil {
		return err
	}
	log.Info("best score cleared")
	return nil
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) error {
	for _, folder := range folders {
		if folder == "" {
			continue
		}
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				return fmt.Errorf("failed to create %s directory: %w", folder, err)
			}
			log.Printf("Created %s directory", folder)
		} else {
			log.Debugf("%s directory already exists", folder)
		}
	}
	return nil
}
