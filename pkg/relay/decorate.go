package relay

import (
	"mercator-hq/interviewer/pkg/providers"
	"mercator-hq/interviewer/pkg/proxy/types"
)

// Decorate returns a new slice holding the persona system turn followed by
// turns. turns is not modified.
func Decorate(persona string, turns []types.Turn) []types.Turn {
	out := make([]types.Turn, 0, len(turns)+1)
	out = append(out, types.SystemTurn(persona))
	return append(out, turns...)
}

func toMessages(turns []types.Turn) []providers.Message {
	msgs := make([]providers.Message, len(turns))
	for i, t := range turns {
		msgs[i] = providers.Message{Role: string(t.Role), Content: t.Content}
	}
	return msgs
}
