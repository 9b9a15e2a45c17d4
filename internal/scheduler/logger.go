package scheduler

import "go.uber.org/zap"

// zapLoggerAdapter satisfies asynq.Logger on top of the app logger.
type zapLoggerAdapter struct {
	logger *zap.SugaredLogger
}

func (a *zapLoggerAdapter) Debug(args ...interface{}) { a.logger.Debug(args...) }
func (a *zapLoggerAdapter) Info(args ...interface{})  { a.logger.Info(args...) }
func (a *zapLoggerAdapter) Warn(args ...interface{})  { a.logger.Warn(args...) }
func (a *zapLoggerAdapter) Error(args ...interface{}) { a.logger.Error(args...) }
func (a *zapLoggerAdapter) Fatal(args ...interface{}) { a.logger.Fatal(args...) }
