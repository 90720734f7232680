// plugmirror polls a leader smartplug and mirrors its relay state to a
// follower smartplug, optionally only inside configured time-of-day
// windows. It runs until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"plugmirror/internal/state"
	"plugmirror/internal/tele"
	"plugmirror/internal/tracker"
	"plugmirror/log2"
)

type repeatedFlag []string

func (self *repeatedFlag) String() string     { return strings.Join(*self, ",") }
func (self *repeatedFlag) Set(v string) error { *self = append(*self, v); return nil }

func main() {
	var active repeatedFlag
	flagConfig := flag.String("config", "", "optional HCL config file")
	flagLeader := flag.String("leader", "", "leader plug host (source of truth)")
	flagFollower := flag.String("follower", "", "follower plug host (driven to match)")
	flag.Var(&active, "active", "active window HH:MM-HH:MM, repeatable; none = always active")
	flagLogFile := flag.String("logfile", "", "log to file instead of stderr")
	flagDebug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log := log2.NewStderr(log2.LInfo)
	if *flagLogFile != "" {
		f, err := os.OpenFile(*flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal(errors.ErrorStack(err))
		}
		log = log2.NewWriter(f, log2.LInfo)
	}
	if sdnotify(log, "start") {
		// under systemd, the journal already timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	config := new(state.Config)
	if *flagConfig != "" {
		config = state.MustReadConfig(log, *flagConfig)
	}
	if *flagLeader != "" {
		config.Leader = *flagLeader
	}
	if *flagFollower != "" {
		config.Follower = *flagFollower
	}
	if len(active) > 0 {
		config.Active = []string(active)
	}
	if *flagDebug {
		config.LogDebug = true
	}
	if config.LogDebug {
		log.SetLevel(log2.LDebug)
	}
	if config.Leader == "" || config.Follower == "" {
		log.Fatal("both -leader and -follower are required")
	}

	schedule, err := config.Schedule()
	if err != nil {
		// refuse to run with a bad window rather than silently ignore it
		log.Fatal(errors.ErrorStack(err))
	}

	teler, err := tele.New(log, config.Tele)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	log.SetErrorFunc(teler.Error)

	t := tracker.New(log,
		config.NewClient(config.Leader),
		config.NewClient(config.Follower),
		schedule, teler, tracker.Options{
			PollDelay:  time.Duration(config.PollDelaySec) * time.Second,
			ErrorDelay: time.Duration(config.ErrorDelaySec) * time.Second,
		})
	log.Infof("leader=%s follower=%s schedule=%s", config.Leader, config.Follower, schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("signal=%v stopping", sig)
		t.Stop()
	}()

	sdnotify(log, daemon.SdNotifyReady)
	t.Run()
	teler.Close()
	log.Infof("goodbye")
}

func sdnotify(log *log2.Log, s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
