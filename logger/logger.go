// Package logger provides leveled logging for the rfb library, backed
// by glog. Verbosity is controlled with glog's -v flag: trace messages
// log at v=2, debug at v=1.
package logger

import (
	"github.com/golang/glog"
)

func Trace(args ...interface{}) {
	glog.V(2).Info(args...)
}

func Tracef(format string, args ...interface{}) {
	glog.V(2).Infof(format, args...)
}

func Debug(args ...interface{}) {
	glog.V(1).Info(args...)
}

func Debugf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
}

func Info(args ...interface{}) {
	glog.Info(args...)
}

func Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func Warn(args ...interface{}) {
	glog.Warning(args...)
}

func Warnf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func Error(args ...interface{}) {
	glog.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}
