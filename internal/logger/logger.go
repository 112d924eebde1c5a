package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log доступен до Init, чтобы use case'ы и тесты могли писать в него без настройки.
var Log = logrus.New()

// Init настраивает уровень и формат. JSON используется вне development.
func Init(level string, development bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if development {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// Discard отключает вывод, используется в тестах.
func Discard() {
	Log.SetOutput(io.Discard)
}

// Funds: поля для записи о движении средств по заказу.
func Funds(jobID uint64, principal string, amount uint64) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"job_id":    jobID,
		"principal": principal,
		"amount":    amount,
	})
}
