// internal/app/features/auditlog/types.go
package auditlog

import (
	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	"github.com/dalemusser/laag/internal/app/system/paging"
)

// listItem is one audit event with profile names resolved.
type listItem struct {
	auditstore.Event
	ActorName  string `json:"actor_name,omitempty"`
	TargetName string `json:"target_name,omitempty"`
}

type listData struct {
	Items      []listItem          `json:"items"`
	Range      paging.Range        `json:"range"`
	Categories []string            `json:"categories"`
	EventTypes map[string][]string `json:"event_types"`
}

// eventTypes lists the known event types per category, for filter menus.
var eventTypes = map[string][]string{
	auditstore.CategoryAuth: {
		auditstore.EventLoginSuccess,
		auditstore.EventLoginFailed,
		auditstore.EventLoginRateLimited,
		auditstore.EventSignup,
		auditstore.EventLogout,
	},
	auditstore.CategoryAdmin: {
		auditstore.EventProfileDeleted,
		auditstore.EventGroupCreated,
		auditstore.EventGroupDeleted,
		auditstore.EventMemberAdded,
		auditstore.EventMemberRemoved,
	},
	auditstore.CategoryLaag: {
		auditstore.EventLaagCreated,
		auditstore.EventLaagCancelled,
		auditstore.EventLaagCompleted,
		auditstore.EventLaagDeleted,
	},
}

var categories = []string{auditstore.CategoryAuth, auditstore.CategoryAdmin, auditstore.CategoryLaag}
