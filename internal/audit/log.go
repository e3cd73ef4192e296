package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"compliancehub.org/internal/obs"
	"compliancehub.org/internal/session"
)

// LogEvent writes an audit log entry enriched with session context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := logrus.Fields{"type": "audit"}
	if viewer, ok := session.ViewerFromContext(ctx); ok {
		entry["viewer_email"] = viewer.Email
		entry["viewer_store"] = viewer.StoreID
	}
	for k, v := range fields {
		entry[k] = v
	}
	obs.Logger().WithFields(entry).Info(event)
	return nil
}
