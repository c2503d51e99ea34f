package store

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "store")

func SetLogger(l *logrus.Entry) {
	log = l
}
