package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/sound"
	"github.com/Garsondee/fingertip-catch/internal/tui"
	"github.com/gdamore/tcell/v2"
)

func main() {
	logFile := flag.String("log", "catch-tui.log", "log file (the terminal is taken by the game)")
	settings, err := config.Load(flag.CommandLine, os.Args[1:], ".env")
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	log.SetOutput(f)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var feed pointer.Source
	if settings.FeedAddr != "" {
		fd := pointer.NewFeed(settings.Round.FrameWidth, settings.Round.FrameHeight, settings.FeedStale,
			pointer.WithSecret(settings.FeedSecret))
		go func() {
			if err := fd.ListenAndServe(ctx, settings.FeedAddr); err != nil {
				log.Printf("feed stopped: %v", err)
			}
		}()
		feed = fd
	}

	player := sound.NewPlayer(settings.Mute)
	defer player.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	app, err := tui.New(screen, settings, feed, player)
	if err != nil {
		screen.Fini()
		log.Fatal(err)
	}
	err = app.Run(ctx)
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
