package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenacore/server"
)

func main() {
	addr := flag.String("addr", ":8080", "http listen address")
	logFile := flag.String("log", "arenad.log", "rotating log file path")
	defaultRoom := flag.String("room", "room-1", "room id to pre-create at startup")
	static := flag.String("static", "", "optional directory of static client assets to serve at /")
	flag.Parse()

	if err := server.InitLogger(*logFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	rm := server.GetRoomManager()
	rm.GetOrCreateRoom(*defaultRoom)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/admin/config", server.HandleAdminConfig)
	mux.HandleFunc("/metrics", server.HandleMetrics)
	mux.HandleFunc("/healthz", server.HandleHealthz)
	if *static != "" {
		mux.Handle("/", http.FileServer(http.Dir(*static)))
	}

	srv := &http.Server{
		Addr:        *addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		server.Log.Infow("arenad listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalw("listen failed", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	server.Log.Infow("shutting down")
	for _, name := range rm.RoomNames() {
		rm.GetOrCreateRoom(name).Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
