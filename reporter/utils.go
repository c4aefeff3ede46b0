package reporter

import (
	"github.com/sirupsen/logrus"
)

func MessageWithContext(reporter Reporter, message string, context Context) {
	if reporter == nil {
		return
	}

	if err := reporter.ReportMessageWithContext(message, context); err != nil {
		logrus.WithError(err).Error("Failed to report message")
	}
}

func Message(reporter Reporter, message string) {
	if reporter == nil {
		return
	}

	if err := reporter.ReportMessage(message); err != nil {
		logrus.WithError(err).Error("Failed to report message")
	}
}
