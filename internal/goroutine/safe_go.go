package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/escrow-marketplace/internal/logger"
)

// Go запускает fn в горутине. Паника логируется со стеком и не роняет процесс.
// done закрывается после завершения fn.
func Go(name string, fn func()) (done <-chan struct{}) {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(logrus.Fields{
					"goroutine": name,
					"panic":     r,
					"stack":     string(debug.Stack()),
				}).Error("паника в горутине")
			}
		}()
		fn()
	}()
	return ch
}
