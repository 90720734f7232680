// Package state holds daemon configuration, read from an HCL file and
// overridable by flags.
package state

import (
	"io/ioutil"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"plugmirror/internal/sched"
	"plugmirror/internal/tele"
	"plugmirror/kasa"
	"plugmirror/log2"
)

type Config struct {
	Leader   string `hcl:"leader"`
	Follower string `hcl:"follower"`
	// plug TCP port, 0 = protocol default 9999
	Port              int `hcl:"port"`
	NetworkTimeoutSec int `hcl:"network_timeout_sec"`

	// active window literals "HH:MM-HH:MM"; none = always active
	Active []string `hcl:"active"`

	PollDelaySec  int  `hcl:"poll_delay_sec"`
	ErrorDelaySec int  `hcl:"error_delay_sec"`
	LogDebug      bool `hcl:"log_debug"`

	Tele tele.Config `hcl:"tele"`
}

func ReadConfig(path string) (*Config, error) {
	c := new(Config)
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "config read path=%s", path)
	}
	if err = hcl.Unmarshal(bs, c); err != nil {
		return nil, errors.Annotatef(err, "config unmarshal path=%s", path)
	}
	return c, nil
}

func MustReadConfig(log *log2.Log, path string) *Config {
	c, err := ReadConfig(path)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}

// Schedule parses the configured window literals. A malformed literal is
// a configuration error; the caller must refuse to run.
func (c *Config) Schedule() (*sched.Schedule, error) {
	return sched.ParseSchedule(c.Active)
}

// NewClient builds a plug client for host with the configured port and
// timeout applied.
func (c *Config) NewClient(host string) *kasa.Client {
	client := kasa.NewClient(host)
	if c.Port != 0 {
		client.Port = c.Port
	}
	if c.NetworkTimeoutSec != 0 {
		client.Timeout = time.Duration(c.NetworkTimeoutSec) * time.Second
	}
	return client
}
