package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"trontris/audio"
	"trontris/client"
	"trontris/config"
	"trontris/server"
	"trontris/terminal"
	"trontris/tetris"

	"github.com/eiannone/keyboard"
)

func main() {
	o := &config.Options{}
	flag.StringVar(&o.DataDir, "data", config.DefaultDataDir(), "directory for preferences, local ranking and logs")
	flag.StringVar(&o.RankingAddr, "ranking", "", "address of a ranking server, empty uses the local ranking")
	flag.StringVar(&o.MusicFile, "music", "", "WAV file played as background music, empty plays the built-in tune")
	flag.IntVar(&o.FrameRate, "fps", tetris.DefaultFrameRate, "frames rendered per second")
	flag.BoolVar(&o.Debug, "debug", false, "log debug messages")
	flag.Parse()

	if err := os.MkdirAll(o.DataDir, 0o755); err != nil {
		log.Fatalf("unable to create data dir: %v", err)
	}
	logFile, err := os.OpenFile(o.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer logFile.Close()
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}))

	prefs := config.LoadPreferences(o.PreferencesPath(), logger)
	store, closeStore, err := server.OpenStore(o, logger)
	if err != nil {
		log.Fatalf("unable to open ranking: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("unable to close ranking", slog.String("error", err.Error()))
		}
	}()

	c, err := client.New(logger, &client.Options{
		Store:           store,
		Music:           audio.New(o.MusicFile, prefs.Volume, logger),
		Preferences:     prefs,
		PreferencesPath: o.PreferencesPath(),
		FrameRate:       o.FrameRate,
	})
	if err != nil {
		log.Fatalf("unable to start client: %v", err)
	}
	defer keyboard.Close() //nolint:errcheck

	fmt.Print(terminal.Clear + terminal.HideCursor)
	logger.Info("client started", slog.String("data", o.DataDir))
	c.Start()
	fmt.Print(terminal.Clear + terminal.ShowCursor)
}
