package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `vantage is a management dashboard: monthly KPIs against budget, a weighted sales pipeline, threaded discussion and corrective actions.

Core concepts:
- KPI value: actual (only once a month is closed), budget and variance rate in percent.
- Status: good / warning / critical from the variance, oriented so that higher is worse for cost KPIs; pending when the actual is unknown.
- Views: current month, previous month, YTD (closed months only) and forecast (actuals so far + budget for the rest of the year).
- Pipeline: opportunities per stage; weighted amount = amount x stage probability.
- Targets: comments hang off a target id such as kpi:revenue or action:<id>.

Default workflow:
1) Orient: get_kpi_overview (latest closed month unless month is given).
2) Discuss: get_comment_thread / post_comment on kpi:<id>; @Name mentions notify people.
3) Act: generate_actions turns warning/critical KPIs into actions; update_action_status and assign_action track them.
4) Follow up: list_notifications and get_recent_activity.

Identity: tools that act on behalf of a user take an explicit id (author_id, user_id, actor_id) or fall back to the X-Vantage-User header (HTTP) / _meta.user_id (stdio).

Docs:
- vantage://docs/index
- vantage://docs/concepts
- vantage://docs/workflows/monthly-review
- vantage://docs/workflows/discussion
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "vantage://docs/index",
		Name:        "docs_index",
		Title:       "vantage docs index",
		Description: "Entry point: which tool answers which question, and what to read next.",
		Content: `# vantage: Agent Docs Index

## Which tool answers what

- "How are we doing this month?" ` + "`get_kpi_overview`" + `
- "Will we hit the annual target?" ` + "`get_kpi_overview`" + ` (forecast, layered revenue, target gap)
- "What is in the pipeline?" ` + "`get_pipeline_summary`" + `
- "What did people say about revenue?" ` + "`get_comment_thread`" + ` with ` + "`target_id=kpi:revenue`" + `
- "What are we doing about it?" ` + "`list_actions`" + `
- "What changed?" ` + "`get_recent_activity`" + `

## Docs (read on demand)

- ` + "`vantage://docs/concepts`" + ` status rules, YTD and forecast definitions, pipeline weighting.
- ` + "`vantage://docs/workflows/monthly-review`" + ` the month-end review loop.
- ` + "`vantage://docs/workflows/discussion`" + ` comments, mentions, reactions and notifications.

## Limitations

- Data is read-only through this server; snapshots are loaded with ` + "`vantage seed`" + `.
- Composite scores (e.g. customer satisfaction) are shown exactly as configured; they are never computed.
`,
	},
	{
		URI:         "vantage://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and rules",
		Description: "Variance, status thresholds, YTD and forecast windows, pipeline weighting and layered revenue.",
		Content: `# Concepts and rules

## Variance and status

- Variance rate = (actual - budget) / budget x 100. It is absent when the budget is 0 or the actual is unknown.
- For cost KPIs (lower is better) the sign is flipped before rating.
- Effective rate >= 0 is **good**, down to -threshold (default 5) is **warning**, below that **critical**.
- No actual means **pending**, never good.

## YTD and forecast

- YTD sums actuals over closed months up to the selected month; the YTD budget covers the same closed months.
- Forecast = actuals of closed months + budget of every remaining month. Its variance compares with the annual budget.
- Once the last month is closed, the forecast equals the YTD actual.

## Pipeline

- Weighted amount = amount x stage probability / 100, computed per stage from exact decimal sums.
- Quality = share of gross pipeline sitting in high-confidence stages.
- Layered revenue stacks confirmed (YTD actual), the remaining budget run-rate and the weighted pipeline.
- Target gap = annual target - (confirmed + weighted pipeline).

## Actions

- Stored statuses: pending, in_progress, completed. Any status may follow any other.
- **overdue** is derived when listing: due date passed and not completed.
`,
	},
	{
		URI:         "vantage://docs/workflows/monthly-review",
		Name:        "docs_workflow_monthly_review",
		Title:       "Workflow: monthly review",
		Description: "From the month-end overview to assigned corrective actions.",
		Content: `# Workflow: monthly review

1) ` + "`get_kpi_overview`" + ` for the month. Read ` + "`issues`" + ` first; they are the warning and critical KPIs.
2) For each issue, read ` + "`get_comment_thread(target_id=kpi:<id>)`" + ` to see what is already known.
3) ` + "`generate_actions(month, assignee)`" + ` creates one action per issue. KPIs that already have an open action for the month are skipped, so the call is safe to repeat.
4) Adjust owners with ` + "`assign_action`" + ` and track progress with ` + "`update_action_status`" + `.
5) ` + "`remind_due_actions`" + ` notifies assignees of actions coming due.
`,
	},
	{
		URI:         "vantage://docs/workflows/discussion",
		Name:        "docs_workflow_discussion",
		Title:       "Workflow: discussion and notifications",
		Description: "Threads, mentions, reactions, edits and the notification inbox.",
		Content: `# Workflow: discussion and notifications

## Threads

- ` + "`post_comment(target_id, content)`" + ` starts a thread; pass ` + "`parent_id`" + ` to reply.
- Threads are returned as trees ordered by posting time. Comments whose parent is missing are listed at the top level and named in ` + "`detached`" + `.

## Mentions

- ` + "`@Name`" + ` mentions a user by directory name. Trailing punctuation is ignored: ` + "`@Aiko,`" + ` mentions Aiko.
- Unknown names are plain text.

## Edits and reactions

- Only the author can edit. Pass ` + "`expected_version`" + ` to fail instead of overwriting a newer edit.
- ` + "`toggle_reaction`" + ` adds or removes your reaction; toggling twice restores the original state.

## Notifications

- Mentions, replies, new comments on threads you joined, reactions, assignments, status changes and due reminders.
- You are never notified of your own actions.
- ` + "`list_notifications`" + ` then ` + "`mark_notification_read`" + ` or ` + "`mark_all_notifications_read`" + `.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
