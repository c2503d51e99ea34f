package input

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "input")

// 替换包内日志
func SetLogger(logger *logrus.Entry) {
	log = logger
}
