package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/game"
	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/sound"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	settings, err := config.Load(flag.CommandLine, os.Args[1:], ".env")
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var feed pointer.Source
	if settings.FeedAddr != "" {
		f := pointer.NewFeed(settings.Round.FrameWidth, settings.Round.FrameHeight, settings.FeedStale,
			pointer.WithSecret(settings.FeedSecret))
		go func() {
			if err := f.ListenAndServe(ctx, settings.FeedAddr); err != nil {
				log.Printf("feed stopped: %v", err)
			}
		}()
		feed = f
	}

	player := sound.NewPlayer(settings.Mute)
	defer player.Close()

	g, err := game.New(settings, feed, player)
	if err != nil {
		log.Fatal(err)
	}
	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Fingertip Catch")
	ebiten.SetWindowSize(int(float64(w)*settings.WindowScale), int(float64(h)*settings.WindowScale))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
