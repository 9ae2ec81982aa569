// Copyright 2024-2026 Aiku AI

// Package translator rewrites messages between the agent-facing messaging
// protocol and the namespaced (".ams.") backend protocol.
//
// A [Translator] is built once per session from a set of substitution
// parameters (see [ParamAgentID], [ParamAgentOldID] and [ParamAccount]) and
// is read-only afterwards, so [Translator.Outgoing] and [Translator.Incoming]
// may be called from any number of goroutines.
//
// # Rule table
//
// Each (direction, type tag) pair maps to one [Rule]. Tags without a rule pass
// through unchanged. Tag renames are listed literally in the table: the
// backend names are irregular (cqm.SubscribeExConversations becomes
// .ams.aam.SubscribeExConversations) and must not be derived from the source
// tag.
//
// # Immutability
//
// A [Message] wraps a JSON object as a Go string. Rules read it with gjson and
// write a new string with sjson, so the caller's message is never modified
// and a failed rewrite never exposes a partial result.
package translator
