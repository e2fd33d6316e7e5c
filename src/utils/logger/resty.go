package logger

import (
	"github.com/sirupsen/logrus"
)

// Resty logger that forces all logs to trace
type RestyLogger struct {
	log *logrus.Entry
}

func NewRestyLogger(tag string) (self *RestyLogger) {
	self = new(RestyLogger)
	self.log = NewSublogger(tag)
	return
}

func (self *RestyLogger) Errorf(format string, v ...interface{}) {
	self.log.Tracef(format, v...)
}

func (self *RestyLogger) Warnf(format string, v ...interface{}) {
	self.log.Tracef(format, v...)
}

func (self *RestyLogger) Debugf(format string, v ...interface{}) {
	self.log.Tracef(format, v...)
}
