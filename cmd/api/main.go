package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/di"
)

func main() {
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("catalog api starting",
			"addr", a.Server.Addr,
			"image_backend", a.Config.ImageStorageBackend,
			"image_dir", a.Config.ImageDirectory,
			"db_driver", a.Config.DatabaseDriver,
		)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case received := <-sig:
		a.Logger.Info("shutdown requested", "signal", received.String())
	case err := <-serveErr:
		a.Logger.Error("http server stopped", "error", err)
		exitCode = 1
	}

	if err := a.Shutdown(context.Background()); err != nil {
		a.Logger.Error("shutdown finished with errors", "error", err)
		exitCode = 1
	} else {
		a.Logger.Info("shutdown complete")
	}
	os.Exit(exitCode)
}
