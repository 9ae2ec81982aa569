// Copyright 2024-2026 Aiku AI

package translator

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Rule rewrites one message into zero or more messages. Rules must not
// return a partially rewritten message alongside an error.
type Rule func(t *Translator, msg Message) ([]Message, error)

type ruleKey struct {
	dir Direction
	tag string
}

const channelMessaging = "MESSAGING"

var rules = map[ruleKey]Rule{
	{Outgoing, "ms.PublishEvent"}:               rename(".ams.ms.PublishEvent"),
	{Outgoing, "cm.UpdateConversationField"}:    rename(".ams.cm.UpdateConversationField"),
	{Outgoing, "routing.SetAgentState"}:         setAgentState,
	{Outgoing, "routing.SubscribeRoutingTasks"}: subscribeRoutingTasks,
	{Outgoing, "cqm.SubscribeExConversations"}:  subscribeExConversations,
	{Outgoing, "routing.UpdateRingState"}:       rename(".ams.routing.UpdateRingState"),

	{Incoming, "ams.ms.PublishEvent"}:                       rename("ms.PublishEvent"),
	{Incoming, ".ams.ms.PublishEvent"}:                      rename("ms.PublishEvent"),
	{Incoming, "ams.cm.UpdateConversationField"}:            rename("ms.UpdateConversationField"),
	{Incoming, ".ams.cm.UpdateConversationField"}:           rename("ms.UpdateConversationField"),
	{Incoming, ".ams.ms.OnlineEventDistribution"}:           onlineEventDistribution,
	{Incoming, ".ams.routing.RoutingTaskNotification"}:      rename("routing.RoutingTaskNotification"),
	{Incoming, ".ams.aam.ExConversationChangeNotification"}: exConversationChange,
}

func single(b *builder) ([]Message, error) {
	msg, err := b.message()
	if err != nil {
		return nil, err
	}
	return []Message{msg}, nil
}

func rename(tag string) Rule {
	return func(_ *Translator, msg Message) ([]Message, error) {
		return single(newBuilder(msg.json()).set("type", tag))
	}
}

// optionalObject fails if path exists and holds anything but an object.
func optionalObject(msg Message, path string) error {
	if v := msg.Get(path); v.Exists() && !v.IsObject() {
		return malformed(path, "an object", v)
	}
	return nil
}

func setAgentState(t *Translator, msg Message) ([]Message, error) {
	oldID, err := t.require(ParamAgentOldID)
	if err != nil {
		return nil, err
	}
	if err = optionalObject(msg, "body"); err != nil {
		return nil, err
	}
	return single(newBuilder(msg.json()).
		set("type", ".ams.routing.SetAgentState").
		set("body.agentUserId", oldID).
		set("body.channels", []string{channelMessaging}))
}

func subscribeRoutingTasks(t *Translator, msg Message) ([]Message, error) {
	oldID, err := t.require(ParamAgentOldID)
	if err != nil {
		return nil, err
	}
	account, err := t.require(ParamAccount)
	if err != nil {
		return nil, err
	}
	if err = optionalObject(msg, "body"); err != nil {
		return nil, err
	}
	return single(newBuilder(msg.json()).
		set("type", ".ams.routing.SubscribeRoutingTasks").
		set("body.channelType", channelMessaging).
		set("body.agentId", oldID).
		set("body.brandId", account))
}

// subscribeExConversations keeps only the ids naming the current agent and
// replaces each with the agent's backend id.
func subscribeExConversations(t *Translator, msg Message) ([]Message, error) {
	agentID, err := t.require(ParamAgentID)
	if err != nil {
		return nil, err
	}
	oldID, err := t.require(ParamAgentOldID)
	if err != nil {
		return nil, err
	}
	if err = optionalObject(msg, "body"); err != nil {
		return nil, err
	}
	ids := msg.Get("body.agentIds")
	if ids.Exists() && !ids.IsArray() {
		return nil, malformed("body.agentIds", "an array", ids)
	}
	kept := make([]string, 0)
	ids.ForEach(func(_, id gjson.Result) bool {
		if id.String() == agentID {
			kept = append(kept, oldID)
		}
		return true
	})
	return single(newBuilder(msg.json()).
		set("type", ".ams.aam.SubscribeExConversations").
		set("body.agentIds", kept))
}

// onlineEventDistribution wraps the event body as the only change of a
// messaging event notification.
func onlineEventDistribution(_ *Translator, msg Message) ([]Message, error) {
	body := msg.Get("body")
	if !body.IsObject() {
		return nil, malformed("body", "an object", body)
	}
	change, err := newBuilder(body.Raw).
		set("originatorId", body.Get("originatorPId").String()).
		del("originatorPId").
		message()
	if err != nil {
		return nil, err
	}
	return single(newBuilder(msg.json()).
		set("type", "ms.MessagingEventNotification").
		setRaw("body", "{}").
		set("body.dialogId", body.Get("dialogId").String()).
		setRaw("body.changes", "["+change.raw+"]"))
}

var (
	droppedResultFields = []string{
		"effectiveTTR",
		"lastUpdateTime",
		"numberOfunreadMessages",
		"lastContentEventNotification",
	}
	droppedDetailFields = []string{
		"convId",
		"brandId",
		"dialogs",
		"note",
		"groupId",
		"csatRate",
		"participants",
	}
)

type participant struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func exConversationChange(_ *Translator, msg Message) ([]Message, error) {
	if err := optionalObject(msg, "body"); err != nil {
		return nil, err
	}
	b := newBuilder(msg.json()).set("type", "cqm.ExConversationChangeNotification")
	changes := msg.Get("body.changes")
	if !changes.Exists() {
		return single(b)
	}
	if !changes.IsArray() {
		return nil, malformed("body.changes", "an array", changes)
	}
	var (
		rewritten []string
		err       error
	)
	changes.ForEach(func(_, change gjson.Result) bool {
		var raw string
		raw, err = rewriteExChange(change, "body.changes."+strconv.Itoa(len(rewritten)))
		rewritten = append(rewritten, raw)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return single(b.setRaw("body.changes", "["+strings.Join(rewritten, ",")+"]"))
}

// rewriteExChange strips the backend-only fields of one conversation change
// and converts participantsPId (role -> ids) to a participants list.
func rewriteExChange(change gjson.Result, path string) (string, error) {
	if !change.IsObject() {
		return "", malformed(path, "an object", change)
	}
	result := change.Get("result")
	if !result.Exists() {
		return change.Raw, nil
	}
	if !result.IsObject() {
		return "", malformed(path+".result", "an object", result)
	}
	b := newBuilder(change.Raw)
	for _, field := range droppedResultFields {
		b.del("result." + field)
	}
	details := result.Get("conversationDetails")
	if !details.Exists() {
		return b.raw, b.err
	}
	detailsPath := path + ".result.conversationDetails"
	if !details.IsObject() {
		return "", malformed(detailsPath, "an object", details)
	}
	for _, field := range droppedDetailFields {
		b.del("result.conversationDetails." + field)
	}
	byRole := details.Get("participantsPId")
	if !byRole.Exists() {
		return b.raw, b.err
	}
	if !byRole.IsObject() {
		return "", malformed(detailsPath+".participantsPId", "an object", byRole)
	}
	var (
		participants []participant
		err          error
	)
	byRole.ForEach(func(role, ids gjson.Result) bool {
		if !ids.IsArray() {
			err = malformed(detailsPath+".participantsPId."+role.String(), "an array", ids)
			return false
		}
		ids.ForEach(func(_, id gjson.Result) bool {
			participants = append(participants, participant{ID: id.String(), Role: role.String()})
			return true
		})
		return true
	})
	if err != nil {
		return "", err
	}
	if len(participants) > 0 {
		b.set("result.conversationDetails.participants", participants)
	}
	b.del("result.conversationDetails.participantsPId")
	return b.raw, b.err
}
