package serve

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds how long in-flight requests are given once the context is cancelled.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe serves requests on server until ctx is cancelled, then shuts the server down gracefully.
// Returns nil on a clean shutdown.
func ListenAndServe(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("serving http on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return errors.WithStack(err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}
