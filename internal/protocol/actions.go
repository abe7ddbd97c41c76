package protocol

import (
	"encoding/json"
	"sort"
)

// Action is a stateless token identified only by its type tag.
type Action interface {
	ActionType() string
}

const ActionFollow = "FollowAction"

// FollowAction asks the companion to follow its leader. It carries no state.
type FollowAction struct{}

func (FollowAction) ActionType() string { return ActionFollow }

func (FollowAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionEnvelope{Type: ActionFollow})
}

// UnmarshalJSON accepts any payload; the token has nothing to restore.
func (a *FollowAction) UnmarshalJSON([]byte) error {
	*a = FollowAction{}
	return nil
}

type actionEnvelope struct {
	Type string `json:"type"`
}

var actions = map[string]func() Action{
	ActionFollow: func() Action { return FollowAction{} },
}

// RegisterAction adds a token type. Registration happens at init time only.
func RegisterAction(tag string, ctor func() Action) {
	if tag == "" || ctor == nil {
		panic("protocol: bad action registration")
	}
	actions[tag] = ctor
}

func ActionTypes() []string {
	out := make([]string, 0, len(actions))
	for k := range actions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EncodeAction writes {"type": <tag>}.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, Errorf(ErrBadRequest, "nil action")
	}
	return json.Marshal(actionEnvelope{Type: a.ActionType()})
}

// DecodeAction looks up the type tag and returns a fresh token; other fields
// are ignored.
func DecodeAction(b []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, Errorf(ErrBadRequest, "bad action: %v", err)
	}
	ctor, ok := actions[env.Type]
	if !ok {
		return nil, Errorf(ErrBadRequest, "unknown action type %q", env.Type)
	}
	return ctor(), nil
}
