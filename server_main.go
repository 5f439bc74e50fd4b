//go:build server

// +build server

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ghostcode/internal/websocket"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp()
	app.Startup(ctx)

	wsServer := websocket.NewServer(app)
	app.SetBroadcaster(wsServer)

	port := 0
	if app.config != nil {
		port = app.config.Settings.ServerPort
	}

	boundPort, err := wsServer.Start(ctx, port)
	if err != nil {
		fmt.Printf("Failed to start WebSocket server: %v\n", err)
		os.Exit(1)
	}

	// The launcher reads the bound port from stdout.
	fmt.Printf("GHOSTCODE_WS_READY:port=%d\n", boundPort)

	// Optionally preload a timeline given on the command line.
	if len(os.Args) > 1 {
		if err := app.LoadTimeline(os.Args[1]); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	wsServer.Stop(ctx)
	app.Shutdown(ctx)
}
