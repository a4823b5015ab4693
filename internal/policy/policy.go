// Package policy decides whether a principal may act on a user record.
package policy

import (
	"fmt"
	"strings"

	"github.com/bilemo/bilemo/internal/model"
)

// Action is an operation a principal attempts on a user.
type Action int

const (
	Show Action = iota
	Update
	Delete
)

var actionNames = map[Action]string{
	Show:   "show",
	Update: "update",
	Delete: "delete",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps an action name to an Action.
// The legacy names ADD and VIEW are accepted as Update and Show.
func ParseAction(name string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "show", "view":
		return Show, nil
	case "update", "add":
		return Update, nil
	case "delete":
		return Delete, nil
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Authorize grants a only when the principal is the Customer owning u.
// Anonymous principals are always denied.
func Authorize(p *model.Principal, a Action, u *model.User) bool {
	if !p.Authenticated() || u == nil {
		return false
	}
	if _, ok := actionNames[a]; !ok {
		return false
	}
	return u.CustomerID != "" && p.CustomerID == u.CustomerID
}

// DenialMessage is the client-facing message for a refused action.
func DenialMessage(a Action) string {
	switch a {
	case Show:
		return "You can't see this content because you are not the owner"
	case Update:
		return "You can't update this content because you are not the owner"
	default:
		return "You can't delete this content because you are not the owner"
	}
}
