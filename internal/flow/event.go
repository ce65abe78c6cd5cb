package flow

import (
	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

// Flow names a multi-step conversation.
type Flow string

// Step is one stage within a flow, bound to one input handler.
type Step string

const (
	FlowRegistration Flow = "registration"
	FlowLocation     Flow = "location"
	FlowSearch       Flow = "search"
	FlowCreate       Flow = "create"
	FlowEdit         Flow = "edit"
	FlowChat         Flow = "chat"
)

const (
	StepCity          Step = "city"
	StepMicrodistrict Step = "microdistrict"

	StepFilters Step = "filters"
	StepQuery   Step = "query"

	StepPhotos      Step = "photos"
	StepCategory    Step = "category"
	StepCondition   Step = "condition"
	StepPrice       Step = "price"
	StepTitle       Step = "title"
	StepDescription Step = "description"

	StepActive Step = "active"
)

// State is the routing key of the machine: the flow plus the step the
// user is currently waiting on.
type State struct {
	Flow Flow
	Step Step
}

// Command is a transport-level slash command.
type Command string

const (
	CommandStart    Command = "start"
	CommandMute     Command = "mute"
	CommandUnmute   Command = "unmute"
	CommandModerate Command = "moderate"
)

// ActionName enumerates every button action the UI can emit. Routing
// never parses payload strings; the gateway decodes straight into Action.
type ActionName string

const (
	ActionBack           ActionName = "back"
	ActionMenuSearch     ActionName = "menu_search"
	ActionMenuListings   ActionName = "menu_listings"
	ActionMenuChats      ActionName = "menu_chats"
	ActionMenuFavourites ActionName = "menu_favourites"
	ActionMenuSettings   ActionName = "menu_settings"

	ActionChangeCity ActionName = "change_city"

	ActionSearchCategory  ActionName = "search_category"
	ActionSearchCondition ActionName = "search_condition"
	ActionSearchGo        ActionName = "search_go"
	ActionFilterCategory  ActionName = "filter_category"
	ActionFilterCondition ActionName = "filter_condition"
	ActionFilterAny       ActionName = "filter_any"

	ActionViewListing ActionName = "view_listing"
	ActionFavourite   ActionName = "favourite"
	ActionUnfavourite ActionName = "unfavourite"
	ActionReport      ActionName = "report"

	ActionCreateListing    ActionName = "create_listing"
	ActionEditListings     ActionName = "edit_listings"
	ActionEditListing      ActionName = "edit_listing"
	ActionEditPhotos       ActionName = "edit_photos"
	ActionEditPrice        ActionName = "edit_price"
	ActionEditCategoryDesc ActionName = "edit_category_desc"

	ActionStartChat ActionName = "start_chat"
	ActionOpenChat  ActionName = "open_chat"
	ActionLoadMore  ActionName = "load_more"

	ActionApprove ActionName = "approve"
	ActionDeny    ActionName = "deny"
)

// Action is a structured button payload.
type Action struct {
	Name      ActionName `json:"name"`
	Listing   listing.ID `json:"listing,omitempty"`
	Partner   user.ID    `json:"partner,omitempty"`
	Category  string     `json:"category,omitempty"`
	Condition string     `json:"condition,omitempty"`
}

// Event is one inbound user interaction: a command, free text, an
// uploaded photo reference, or a button action.
type Event struct {
	User    user.ID
	Command Command
	Text    string
	Photo   string
	Action  *Action
}

// Context is the per-user bag of fields accumulated across the steps of
// the flow in progress. A new flow replaces it wholesale.
type Context struct {
	Flow Flow
	Step Step

	City      string
	Category  string
	Condition string

	Photos []string
	Price  int64
	Title  string

	Listing listing.ID

	Chat      *chat.Key
	ChatShown int
}

// State returns the routing key for the context.
func (c *Context) State() State {
	return State{Flow: c.Flow, Step: c.Step}
}
