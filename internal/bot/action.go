package bot

import "strings"

// Action is a parsed callback tag
type Action int

// Callback actions
const (
	ActionUnknown Action = iota
	ActionHigh
	ActionLow
	ActionAudio
	ActionThumbnail
	ActionHome
	ActionHelp
	ActionAbout
	ActionClose
)

// Callback data tags carried by inline buttons
const (
	TagHigh      = "high"
	TagLow       = "360p"
	TagAudio     = "audio"
	TagThumbnail = "thumbnail"
	TagHome      = "home"
	TagHelp      = "help"
	TagAbout     = "about"
	TagClose     = "close"
)

var actionTags = map[string]Action{
	TagHigh:      ActionHigh,
	TagLow:       ActionLow,
	TagAudio:     ActionAudio,
	TagThumbnail: ActionThumbnail,
	TagHome:      ActionHome,
	TagHelp:      ActionHelp,
	TagAbout:     ActionAbout,
	TagClose:     ActionClose,
}

// ParseAction maps callback data onto an Action
func ParseAction(data string) Action {
	if a, ok := actionTags[strings.TrimSpace(data)]; ok {
		return a
	}
	return ActionUnknown
}

// String returns the tag of the action
func (a Action) String() string {
	for tag, action := range actionTags {
		if action == a {
			return tag
		}
	}
	return "unknown"
}

// IsMedia reports whether the action needs a stored session
func (a Action) IsMedia() bool {
	switch a {
	case ActionHigh, ActionLow, ActionAudio, ActionThumbnail:
		return true
	}
	return false
}

// IsNavigation reports whether the action edits the panel in place
func (a Action) IsNavigation() bool {
	return a == ActionHome || a == ActionHelp || a == ActionAbout
}
