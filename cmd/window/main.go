package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"trontris/audio"
	"trontris/config"
	"trontris/ranking"
	"trontris/server"
	"trontris/window"
)

func main() {
	o := &config.Options{}
	var name string
	flag.StringVar(&o.DataDir, "data", config.DefaultDataDir(), "directory for preferences and the local ranking")
	flag.StringVar(&o.RankingAddr, "ranking", "", "address of a ranking server, empty uses the local ranking")
	flag.StringVar(&o.MusicFile, "music", "", "WAV file played as background music, empty plays the built-in tune")
	flag.StringVar(&name, "name", "", "player name, defaults to the saved one")
	flag.BoolVar(&o.Debug, "debug", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	prefs := config.LoadPreferences(o.PreferencesPath(), logger)
	if name != "" {
		prefs.Name = name
		if err := prefs.Save(o.PreferencesPath()); err != nil {
			logger.Warn("unable to save preferences", slog.String("error", err.Error()))
		}
	}
	if prefs.Name == "" {
		prefs.Name = ranking.DefaultName
	}

	store, closeStore, err := server.OpenStore(o, logger)
	if err != nil {
		log.Fatalf("unable to open ranking: %v", err)
	}
	defer closeStore() //nolint:errcheck

	music := audio.New(o.MusicFile, prefs.Volume, logger)
	if prefs.MusicOn {
		if err := music.Play(); err != nil {
			logger.Warn("unable to play music", slog.String("error", err.Error()))
		}
	}

	g := window.New(&window.Options{
		Store:  store,
		Music:  music,
		Name:   prefs.Name,
		Logger: logger,
	})
	if err := window.Run(g); err != nil {
		log.Fatalf("window closed with error: %v", err)
	}
}
