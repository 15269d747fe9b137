package repo

import (
	"context"
	"time"

	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/pkg/logging"
)

// LogAction records an audit row. Failures are logged and swallowed so an
// audit outage never fails the request that triggered it.
func (r *GormRepo) LogAction(ctx context.Context, actionName, description, module, actor, origin string) {
	entry := models.AuditTrail{
		ActionName:        actionName,
		ActionDescription: description,
		Module:            module,
		Actor:             actor,
		Origin:            origin,
		ActionTime:        time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		logging.FromContext(ctx).Error("audit_write_failed", "action", actionName, "error", err)
	}
}
