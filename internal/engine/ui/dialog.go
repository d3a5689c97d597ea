package ui

import (
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/logger"
)

// OpenModelDialog shows a native file picker on its own goroutine so the
// frame loop keeps running. The chosen path is sent on picked and loaded
// by the receiver on the main thread. Nothing is sent on cancel or while
// an earlier pick is still pending.
func OpenModelDialog(picked chan<- string) {
	go func() {
		filename, err := dialog.File().
			Filter("Wavefront OBJ", "obj").
			Filter("All Files", "*").
			Title("Import Model").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Named("ui").Warn("File dialog failed", zap.Error(err))
			}
			return
		}

		select {
		case picked <- filename:
		default:
		}
	}()
}
