package todoist

// Colors assignable to projects, labels and filters.
const (
	ColorGreen = iota
	ColorPink
	ColorLightOrange
	ColorYellow
	ColorDarkBlue
	ColorBrown
	ColorPurple
	ColorGray
	ColorRed
	ColorDarkOrange
	ColorCyan
	ColorLightBlue
)

// Task priorities. Higher is more urgent.
const (
	PriorityNone = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityVeryHigh
)

// Events that notification settings apply to.
const (
	EventUserLeftProject               = "user_left_project"
	EventUserRemovedFromProject        = "user_removed_from_project"
	EventItemAssigned                  = "item_assigned"
	EventItemCompleted                 = "item_completed"
	EventItemUncompleted               = "item_uncompleted"
	EventNoteAdded                     = "note_added"
	EventBizAccountDisabled            = "biz_account_disabled"
	EventBizInvitationAccepted         = "biz_invitation_accepted"
	EventBizInvitationRejected         = "biz_invitation_rejected"
	EventBizPaymentFailed              = "biz_payment_failed"
	EventBizPolicyDisallowedInvitation = "biz_policy_disallowed_invitation"
	EventBizPolicyRejectedInvitation   = "biz_policy_rejected_invitation"
	EventBizTrialWillEnd               = "biz_trial_will_end"
	EventShareInvitationAccepted       = "share_invitation_accepted"
	EventShareInvitationRejected       = "share_invitation_rejected"
)

// Standard search queries for SearchTasks.
const (
	QueryToday     = "today"
	QueryTomorrow  = "tomorrow"
	QueryAll       = "viewall"
	QueryNoDueDate = "no due date"
	QueryOverdue   = "overdue"
	QueryPriority1 = "p1"
	QueryPriority2 = "p2"
	QueryPriority3 = "p3"
)
