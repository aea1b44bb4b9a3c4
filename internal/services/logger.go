package services

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel lets main apply LOG_LEVEL to the service layer
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}
