// plugctl issues single commands to one smartplug: query or set the
// relay, blink it, dump sysinfo. Wire-compatible with the plugmirror
// daemon; uses only the kasa package. Without a command it reads
// commands interactively (tty) or line by line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	isatty "github.com/mattn/go-isatty"

	"plugmirror/kasa"
	"plugmirror/log2"
)

const usage = `usage: plugctl -host PLUG [command]
commands:
- state              print relay state
- sysinfo            print raw sysinfo document
- on | off           set relay state
- toggle             flip relay state
- blink [n] [ms]     toggle n times with ms pause, then restore (default 5 200)
`

var log = log2.NewStderr(log2.LInfo)

func main() {
	flagHost := flag.String("host", "", "plug hostname or IP")
	flagPort := flag.Int("port", kasa.DefaultPort, "plug TCP port")
	flagTimeout := flag.Duration("timeout", kasa.DefaultTimeout, "network timeout")
	flagDebug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log.SetFlags(log2.LInteractiveFlags)
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}
	if *flagHost == "" {
		log.Fatal(usage)
	}

	client := kasa.NewClient(*flagHost)
	client.Port = *flagPort
	client.Timeout = *flagTimeout
	client.Log = log

	if args := flag.Args(); len(args) > 0 {
		if err := execute(client, args); err != nil {
			log.Fatal(errors.ErrorStack(err))
		}
		return
	}
	mainLoop(client)
}

func mainLoop(client *kasa.Client) {
	exec := func(line string) {
		words := strings.Fields(line)
		if len(words) == 0 {
			return
		}
		if err := execute(client, words); err != nil {
			log.Error(err)
		}
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt.New(exec, completer).Run()
		return
	}
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		exec(sc.Text())
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "state", Description: "print relay state"},
		{Text: "sysinfo", Description: "print raw sysinfo document"},
		{Text: "on", Description: "relay on"},
		{Text: "off", Description: "relay off"},
		{Text: "toggle", Description: "flip relay state"},
		{Text: "blink", Description: "blink [n] [delay-ms]"},
		{Text: "help", Description: "show usage"},
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}

func execute(client *kasa.Client, words []string) error {
	switch words[0] {
	case "state":
		s, err := client.GetRelayState()
		if err != nil {
			return err
		}
		fmt.Println(s)
	case "sysinfo":
		doc, err := client.SysInfo()
		if err != nil {
			return err
		}
		fmt.Println(doc)
	case "on":
		return client.SetRelayState(kasa.On)
	case "off":
		return client.SetRelayState(kasa.Off)
	case "toggle":
		return toggle(client)
	case "blink":
		n := 5
		delay := 200 * time.Millisecond
		var err error
		if len(words) > 1 {
			if n, err = strconv.Atoi(words[1]); err != nil {
				return errors.NotValidf("blink count %q", words[1])
			}
		}
		if len(words) > 2 {
			ms, err := strconv.Atoi(words[2])
			if err != nil {
				return errors.NotValidf("blink delay %q", words[2])
			}
			delay = time.Duration(ms) * time.Millisecond
		}
		return blink(client, n, delay)
	case "help":
		log.Infof(usage)
	default:
		return errors.Errorf("unknown command %q\n%s", words[0], usage)
	}
	return nil
}

func toggle(client *kasa.Client) error {
	s, err := client.GetRelayState()
	if err != nil {
		return err
	}
	target := kasa.On
	if s == kasa.On {
		target = kasa.Off
	}
	log.Infof("state=%s setting=%s", s, target)
	return client.SetRelayState(target)
}

// blink flips the relay n times and restores the original state.
func blink(client *kasa.Client, n int, delay time.Duration) error {
	original, err := client.GetRelayState()
	if err != nil {
		return err
	}
	log.Infof("original state=%s", original)
	current := original
	for i := 0; i < n; i++ {
		if current == kasa.On {
			current = kasa.Off
		} else {
			current = kasa.On
		}
		log.Infof("setting state=%s (%d/%d)", current, i+1, n)
		if err = client.SetRelayState(current); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	if current != original {
		log.Infof("returning to original state=%s", original)
		return client.SetRelayState(original)
	}
	return nil
}
