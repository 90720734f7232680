package kasa

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plugmirror/log2"
)

// servePlug runs a fake smartplug on loopback: read one framed request,
// decode it, answer with whatever respond returns (empty = close without
// answering).
func servePlug(t *testing.T, respond func(request string) string) *Client {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				buf := make([]byte, recvLimit)
				n, err := conn.Read(buf)
				if err != nil || n <= prefixLength {
					return
				}
				if response := respond(Decrypt(buf[prefixLength:n])); response != "" {
					_, _ = conn.Write(Encrypt(response))
				}
			}(conn)
		}
	}()
	return clientFor(t, ln.Addr())
}

func clientFor(t *testing.T, addr net.Addr) *Client {
	host, portStr, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	c := NewClient(host)
	c.Port = port
	c.Timeout = 500 * time.Millisecond
	c.Log = log2.NewTest(t, log2.LDebug)
	return c
}

func TestGetRelayState(t *testing.T) {
	requestCh := make(chan string, 8)
	c := servePlug(t, func(request string) string {
		requestCh <- request
		return `{"system":{"get_sysinfo":{"alias":"desk","relay_state":1,"rssi":-41}}}`
	})

	state, err := c.GetRelayState()
	require.NoError(t, err)
	assert.Equal(t, On, state)
	assert.Equal(t, `{"system":{"get_sysinfo":null}}`, <-requestCh)
}

func TestSetRelayState(t *testing.T) {
	requestCh := make(chan string, 8)
	c := servePlug(t, func(request string) string {
		requestCh <- request
		return ""
	})

	require.NoError(t, c.SetRelayState(Off))
	assert.Equal(t, `{"system":{"set_relay_state":{"state":0}}}`, <-requestCh)

	require.NoError(t, c.SetRelayState(On))
	assert.Equal(t, `{"system":{"set_relay_state":{"state":1}}}`, <-requestCh)
}

func TestSetRelayStateUnknownPanics(t *testing.T) {
	t.Parallel()

	c := NewClient("127.0.0.1")
	assert.Panics(t, func() { _ = c.SetRelayState(Unknown) })
}

func TestProtocolErrors(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not-json", "gobbledygook"},
		{"missing-field", `{"system":{"get_sysinfo":{"alias":"desk"}}}`},
		{"out-of-range", `{"system":{"get_sysinfo":{"relay_state":7}}}`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			client := servePlug(t, func(string) string { return c.response })
			_, err := client.GetRelayState()
			require.Error(t, err)
			assert.True(t, IsProtocol(err), "expected protocol error, got %v", err)
			assert.False(t, IsTransport(err))
		})
	}
}

func TestTransportErrors(t *testing.T) {
	t.Run("refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		c := clientFor(t, ln.Addr())
		require.NoError(t, ln.Close())

		_, err = c.GetRelayState()
		require.Error(t, err)
		assert.True(t, IsTransport(err), "expected transport error, got %v", err)

		err = c.SetRelayState(On)
		require.Error(t, err)
		assert.True(t, IsTransport(err), "expected transport error, got %v", err)
	})

	t.Run("no-data", func(t *testing.T) {
		c := servePlug(t, func(string) string { return "" })
		_, err := c.GetRelayState()
		require.Error(t, err)
		assert.True(t, IsTransport(err), "expected transport error, got %v", err)
	})
}
