package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the yaml config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
	}

	repo, err := OpenRepository(cfg.Storage.URL)
	if err != nil {
		log.WithError(err).WithField("url", cfg.Storage.URL).Fatal("could not open storage")
	}
	log.WithField("url", cfg.Storage.URL).Info("storage ready")

	service := NewService(repo)
	defer service.close()

	player := NewProcessPlayer(cfg.Player.Command)
	radio := NewRadio(player, repo)
	if err := radio.Resume(); err != nil {
		log.WithError(err).Warn("could not resume playback")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := NewScheduler(service, radio)
	scheduler.Start(ctx)
	defer scheduler.Shutdown()

	router := NewHTTPRouter(service, radio, scheduler, cfg)
	go func() {
		log.WithField("address", cfg.Listen.Address).Info("listening")
		if err := router.Start(cfg.Listen.Address); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}

	// Kill the player process without flipping the persisted intent: if
	// the radio was playing, it resumes on the next start.
	if radio.Status().Status == StatusPlaying {
		log.Info("radio was playing, it will resume on next start")
		if err := player.Stop(); err != nil {
			log.WithError(err).Warn("could not stop player")
		}
	}
}
