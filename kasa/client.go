package kasa

import (
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/juju/errors"

	"plugmirror/log2"
)

const (
	// well-known smartplug TCP port
	DefaultPort = 9999
	// bounds dial, send and receive individually
	DefaultTimeout = 2 * time.Second
)

// Client talks to one smartplug. Every operation is a fresh
// connect-send-receive-close transaction; no connection is held between
// calls, so there is nothing to pool and nothing to interleave.
type Client struct {
	Host    string
	Port    int // 0 = DefaultPort
	Timeout time.Duration
	Log     *log2.Log
}

func NewClient(host string) *Client {
	return &Client{Host: host, Port: DefaultPort, Timeout: DefaultTimeout}
}

func (self *Client) Addr() string {
	port := self.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(self.Host, strconv.Itoa(port))
}

// GetRelayState asks the plug for its current relay position.
func (self *Client) GetRelayState() (RelayState, error) {
	doc, err := self.SysInfo()
	if err != nil {
		return Unknown, err
	}
	var parsed sysinfoDocument
	if err = json.Unmarshal([]byte(doc), &parsed); err != nil {
		return Unknown, ProtocolError{Addr: self.Addr(), Msg: "sysinfo is not JSON: " + err.Error()}
	}
	info := parsed.System.GetSysinfo
	if info == nil || info.RelayState == nil {
		return Unknown, ProtocolError{Addr: self.Addr(), Msg: "sysinfo missing system.get_sysinfo.relay_state"}
	}
	switch *info.RelayState {
	case 0:
		return Off, nil
	case 1:
		return On, nil
	}
	return Unknown, ProtocolError{Addr: self.Addr(), Msg: "relay_state=" + strconv.Itoa(*info.RelayState) + " out of range"}
}

// SetRelayState commands the relay to state. No response is read; the
// plug applies the command or the connection fails. state must be Off or
// On, passing Unknown is a bug in the caller.
func (self *Client) SetRelayState(state RelayState) error {
	cmd, ok := cmdSetRelay[state]
	if !ok {
		panic("code error kasa: SetRelayState state=" + state.String())
	}
	_, err := self.tx(cmd, false)
	return errors.Annotate(err, "set_relay_state")
}

// SysInfo returns the decoded raw sysinfo document.
func (self *Client) SysInfo() (string, error) {
	payload, err := self.tx(cmdSysinfo, true)
	if err != nil {
		return "", errors.Annotate(err, "get_sysinfo")
	}
	return Decrypt(payload), nil
}

// tx runs one transaction. The returned payload has the length prefix
// already stripped. Connection is closed on every path.
func (self *Client) tx(cmd []byte, recv bool) ([]byte, error) {
	timeout := self.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	addr := self.Addr()
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, TransportError{Addr: addr, Err: err}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err = conn.Write(cmd); err != nil {
		return nil, TransportError{Addr: addr, Err: err}
	}
	if !recv {
		return nil, nil
	}

	buf := make([]byte, recvLimit)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, TransportError{Addr: addr, Err: err}
	}
	if n <= prefixLength {
		return nil, TransportError{Addr: addr, Err: errors.Errorf("short response len=%d", n)}
	}
	self.Log.Debugf("kasa tx addr=%s sent=%d recv=%d", addr, len(cmd), n)
	return buf[prefixLength:n], nil
}

type sysinfoDocument struct {
	System struct {
		GetSysinfo *struct {
			RelayState *int `json:"relay_state"`
		} `json:"get_sysinfo"`
	} `json:"system"`
}
