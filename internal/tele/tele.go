// Package tele reports mirror activity to an MQTT broker for remote
// monitoring. It is optional: disabled config yields a Noop and the
// tracker never blocks on broker availability.
//
// Contract:
// - State/Error never block beyond a channel send, messages may be lost
//   while the broker is unreachable
// - Close flushes nothing, pending messages are dropped
package tele

import (
	"plugmirror/kasa"
)

type Config struct {
	Enable       bool   `hcl:"enable"`
	Broker       string `hcl:"broker"`
	TopicPrefix  string `hcl:"topic_prefix"`
	ClientID     string `hcl:"client_id"`
	Password     string `hcl:"password"`
	KeepaliveSec int    `hcl:"keepalive_sec"`
}

type Teler interface {
	State(kasa.RelayState)
	Error(error)
	Close()
}

type Noop struct{}

func (Noop) State(kasa.RelayState) {}
func (Noop) Error(error)           {}
func (Noop) Close()                {}
