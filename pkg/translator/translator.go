// Copyright 2024-2026 Aiku AI

package translator

import (
	"fmt"
	"maps"
)

// Substitution parameter names recognized by the rule table.
const (
	ParamAgentID    = "agentId"
	ParamAgentOldID = "agentOldId"
	ParamAccount    = "account"
)

// Direction is the side a message is traveling toward.
type Direction int

const (
	// Outgoing messages travel from the agent toward the backend.
	Outgoing Direction = iota
	// Incoming messages travel from the backend toward the agent.
	Incoming
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "outgoing" or "incoming".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "outgoing":
		return Outgoing, nil
	case "incoming":
		return Incoming, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Translator rewrites messages for one session. It is safe for concurrent use.
type Translator struct {
	params map[string]string
}

// New creates a Translator. The params map is copied; names the rules do not
// use are kept but ignored.
func New(params map[string]string) *Translator {
	copied := make(map[string]string, len(params))
	maps.Copy(copied, params)
	return &Translator{params: copied}
}

// Param returns the value of a substitution parameter.
func (t *Translator) Param(name string) (string, bool) {
	value, ok := t.params[name]
	return value, ok
}

func (t *Translator) require(name string) (string, error) {
	value, ok := t.params[name]
	if !ok {
		return "", missingParameter(name)
	}
	return value, nil
}

// Outgoing rewrites an agent-side message for the backend.
func (t *Translator) Outgoing(msg Message) ([]Message, error) {
	return t.Translate(Outgoing, msg)
}

// Incoming rewrites a backend message for the agent side.
func (t *Translator) Incoming(msg Message) ([]Message, error) {
	return t.Translate(Incoming, msg)
}

// Translate looks up the rule for the message's type tag and applies it.
// Messages without a rule are returned unchanged as the only element.
func (t *Translator) Translate(dir Direction, msg Message) ([]Message, error) {
	tag := msg.Type()
	rule, ok := rules[ruleKey{dir: dir, tag: tag}]
	if !ok {
		return []Message{msg}, nil
	}
	out, err := rule(t, msg)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", dir, tag, err)
	}
	return out, nil
}
