package kasa

// Command payloads are pure functions of fixed strings, built once and
// reused for every transaction.
// https://github.com/softScheck/tplink-smartplug/blob/master/tplink-smarthome-commands.txt
var (
	cmdSysinfo = Encrypt(`{"system":{"get_sysinfo":null}}`)

	cmdSetRelay = map[RelayState][]byte{
		Off: Encrypt(`{"system":{"set_relay_state":{"state":0}}}`),
		On:  Encrypt(`{"system":{"set_relay_state":{"state":1}}}`),
	}
)
