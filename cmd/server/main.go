package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"trontris/config"
	"trontris/ranking"
	"trontris/server"

	"google.golang.org/grpc"
)

func main() {
	o := &config.Options{}
	var addr string
	flag.StringVar(&addr, "listen", ":9000", "address the ranking server listens on")
	flag.StringVar(&o.DataDir, "data", config.DefaultDataDir(), "directory of the ranking file")
	flag.BoolVar(&o.Debug, "debug", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()
	s := grpc.NewServer()
	server.Register(s, server.New(ranking.NewFileStore(o.RankingPath(), logger), logger))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("stopping server")
		s.GracefulStop()
	}()

	logger.Info("starting server", slog.String("address", lis.Addr().String()), slog.String("ranking", o.RankingPath()))
	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
