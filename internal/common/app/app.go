package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/armadaproject/fairshare/internal/common/fscontext"
)

// CreateContextWithShutdown returns a context that will report done when a SIGINT or SIGTERM is received.
func CreateContextWithShutdown() *fscontext.Context {
	ctx, cancel := fscontext.WithCancel(fscontext.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-c:
			ctx.Log.Infof("received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
