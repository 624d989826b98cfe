package action

import "time"

// Status is the stored state of an action item. Transitions are unrestricted.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	// StatusOverdue is derived at read time and never stored.
	StatusOverdue Status = "overdue"
)

// Storable reports whether s may be persisted.
func (s Status) Storable() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority ranks action items.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Metrics snapshots the KPI figures an auto-generated action responds to.
type Metrics struct {
	Before  float64 `json:"before"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

// ActionItem is a corrective task raised against a business issue.
type ActionItem struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	TargetName string    `json:"target_name"`
	Issue      string    `json:"issue"`
	Action     string    `json:"action"`
	Assignee   string    `json:"assignee"`
	DueDate    time.Time `json:"due_date"`
	Status     Status    `json:"status"`
	Priority   Priority  `json:"priority"`
	CreatedBy  string    `json:"created_by"`
	// KPIID and Month link an auto-generated action to the issue it came from.
	KPIID     string    `json:"kpi_id,omitempty"`
	Month     string    `json:"month,omitempty"`
	Metrics   *Metrics  `json:"metrics,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// View is an action item with its status as seen at a point in time.
type View struct {
	ActionItem
	EffectiveStatus Status `json:"effective_status"`
}

// EffectiveStatus derives overdue from the due date. Completed items are
// never overdue.
func EffectiveStatus(item ActionItem, now time.Time) Status {
	if item.Status != StatusCompleted && !item.DueDate.IsZero() && item.DueDate.Before(now) {
		return StatusOverdue
	}
	return item.Status
}

// Filter narrows repository listings.
type Filter struct {
	Assignee string
	Category string
	KPIID    string
	Month    string
}

// ListOptions filters service listings. Status matches the effective status.
type ListOptions struct {
	Filter
	Status   *Status
	Priority *Priority
}
