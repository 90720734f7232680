package tele

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"

	"plugmirror/helpers"
	"plugmirror/kasa"
	"plugmirror/log2"
)

const publishTimeout = 10 * time.Second

type topicSet struct {
	connect string // retained 0x01/0x00 presence marker, 0x00 is the will
	state   string
	errors  string
}

func newTopicSet(prefix string) topicSet {
	return topicSet{
		connect: prefix + "/c",
		state:   prefix + "/w/1s",
		errors:  prefix + "/w/1e",
	}
}

type message struct {
	topic   string
	payload []byte
}

type mqttTele struct {
	log     *log2.Log
	m       mqtt.Client
	topics  topicSet
	sendCh  chan message
	stopCh  chan struct{}
	backoff helpers.Backoff
}

// New returns Noop for disabled config. Broker absence at startup is not
// an error; paho retries in background.
func New(log *log2.Log, config Config) (Teler, error) {
	if !config.Enable {
		return Noop{}, nil
	}
	if config.Broker == "" {
		return nil, errors.NotValidf("tele enabled with empty broker")
	}
	prefix := config.TopicPrefix
	if prefix == "" {
		prefix = "plugmirror"
	}
	clientID := config.ClientID
	if clientID == "" {
		clientID = prefix
	}

	self := &mqttTele{
		log:     log,
		topics:  newTopicSet(prefix),
		sendCh:  make(chan message, 16),
		stopCh:  make(chan struct{}),
		backoff: helpers.Backoff{Min: 1 * time.Second, Max: 30 * time.Second, K: 2},
	}
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log

	keepAlive := helpers.IntSecondDefault(config.KeepaliveSec, 60*time.Second)
	opt := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientID).
		SetCredentialsProvider(func() (string, string) { return clientID, config.Password }).
		SetBinaryWill(self.topics.connect, []byte{0x00}, 1, true).
		SetKeepAlive(keepAlive).
		SetPingTimeout(keepAlive / 2).
		SetConnectRetry(true).
		SetConnectRetryInterval(keepAlive / 2).
		SetOnConnectHandler(self.onConnect).
		SetConnectionLostHandler(self.onConnectionLost)
	self.m = mqtt.NewClient(opt)
	if token := self.m.Connect(); token.Error() != nil {
		return nil, errors.Annotate(token.Error(), "tele connect")
	}
	go self.worker()
	return self, nil
}

func (self *mqttTele) State(s kasa.RelayState) {
	self.send(message{topic: self.topics.state, payload: []byte(s.String())})
}

func (self *mqttTele) Error(e error) {
	if e == nil {
		return
	}
	self.send(message{topic: self.topics.errors, payload: []byte(e.Error())})
}

func (self *mqttTele) Close() {
	close(self.stopCh)
	self.m.Publish(self.topics.connect, 1, true, []byte{0x00})
	self.m.Disconnect(250)
}

// send never blocks the caller.
func (self *mqttTele) send(m message) {
	select {
	case <-self.stopCh:
	case self.sendCh <- m:
	default:
		self.log.Debugf("tele queue full, dropping topic=%s", m.topic)
	}
}

func (self *mqttTele) worker() {
	for {
		select {
		case <-self.stopCh:
			return
		case m := <-self.sendCh:
			ok := self.publish(m)
			if delay := self.backoff.DelayAfter(ok); delay > 0 {
				self.log.Debugf("tele publish failed, pausing %s", delay)
				time.Sleep(delay)
			}
		}
	}
}

func (self *mqttTele) publish(m message) bool {
	token := self.m.Publish(m.topic, 1, true, m.payload)
	if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
		self.log.Debugf("tele publish topic=%s err=%v", m.topic, token.Error())
		return false
	}
	return true
}

func (self *mqttTele) onConnect(c mqtt.Client) {
	self.log.Debugf("tele broker connected")
	c.Publish(self.topics.connect, 1, true, []byte{0x01})
}

func (self *mqttTele) onConnectionLost(_ mqtt.Client, err error) {
	self.log.Debugf("tele broker connection lost: %v", err)
}
