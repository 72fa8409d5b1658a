// Package logging decorates fmodel handlers with structured logs.
package logging

import (
	"context"
	"errors"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/terraskye/fmodel"
)

// WithCommandLogging wraps a CommandHandler with logging functionality.
// It logs the command type and identifier before execution, and logs
// errors if the command fails. Rejections by the decider are logged as
// warnings.
func WithCommandLogging[C, R any](logger *logrus.Entry, next fmodel.CommandHandler[C, R]) fmodel.CommandHandler[C, R] {
	return func(ctx context.Context, command C) (R, error) {
		cmdType := reflect.TypeOf(command).String()
		l := logger.WithContext(ctx).WithFields(logrus.Fields{
			"command":    cmdType,
			"identifier": fmodel.IdentifierOf(command),
		})
		l.Infof("Dispatch: %s", cmdType)

		result, err := next(ctx, command)
		switch {
		case err == nil:
		case errors.Is(err, fmodel.ErrBusinessRuleViolation):
			l.WithError(err).Warnf("Dispatch rejected: %s", cmdType)
		default:
			l.WithError(err).Errorf("Dispatch failed: %s", cmdType)
		}

		return result, err
	}
}
