package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	pahoMQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

var (
	mqttTimeout = time.Second

	BidEventsTopic = "topic/BidEvents"
)

var (
	trackerConnectionHandler pahoMQTT.OnConnectHandler = func(client mqtt.Client) {
		logrus.Info("MQTT Client Connected For The Tracker")
	}

	trackerConnectionLostHandler pahoMQTT.ConnectionLostHandler = func(client mqtt.Client, err error) {
		logrus.WithError(err).Info("Connection Lost To MQTT Client")
	}
)

type TrackerMQTTOpts struct {
	Broker   string
	Port     uint64
	ClientID string
	UserName string
	Password string
}

type TrackerChannels struct {
	EventChannel chan Event
}

// TrackerMQTT publishes every analytics event to the event sink's broker.
// Events are fed through a channel so handlers never block on the broker.
type TrackerMQTT struct {
	Broker        string
	ClientOptions *pahoMQTT.ClientOptions
	Client        pahoMQTT.Client

	Log *logrus.Entry

	Channel TrackerChannels
}

func ClientBrokerUrl(broker string, port uint64) string {
	return fmt.Sprintf("tcp://%s:%d", broker, port)
}

func NewMQTTTracker(clientParameters TrackerMQTTOpts) (*TrackerMQTT, error) {
	tracker := new(TrackerMQTT)

	tracker.Broker = clientParameters.Broker
	tracker.Log = logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
		"package": "Analytics",
		"broker":  clientParameters.Broker,
	})

	tracker.Channel.EventChannel = make(chan Event)

	tracker.ClientOptions = pahoMQTT.NewClientOptions()
	tracker.ClientOptions.AddBroker(ClientBrokerUrl(clientParameters.Broker, clientParameters.Port))

	tracker.ClientOptions.SetClientID(clientParameters.ClientID)
	tracker.ClientOptions.SetUsername(clientParameters.UserName)
	tracker.ClientOptions.SetPassword(clientParameters.Password)

	tracker.ClientOptions.OnConnect = trackerConnectionHandler
	tracker.ClientOptions.OnConnectionLost = trackerConnectionLostHandler

	tracker.Client = pahoMQTT.NewClient(tracker.ClientOptions)

	if trackerToken := tracker.Client.Connect(); trackerToken.Wait() && trackerToken.Error() != nil {
		tracker.Log.WithError(trackerToken.Error()).Error("Tracker Client Failed To Connect")
		return nil, trackerToken.Error()
	}

	go tracker.EventPublish()

	tracker.Log.Info("Tracker Client Ready For Gateway")
	return tracker, nil
}

// Post satisfies Sink. Delivery order per submission is preserved because the
// resolver posts sequentially and the publisher drains one channel.
func (tracker *TrackerMQTT) Post(event Event) {
	tracker.Channel.EventChannel <- event
}

func (tracker *TrackerMQTT) EventPublish() {
	tracker.Log.Info("Publish Bid Events Run")
	for event := range tracker.Channel.EventChannel {
		payload, err := json.Marshal(event)
		if err != nil {
			tracker.Log.WithError(err).Error("Couldn't Marshal Bid Event")
			continue
		}

		if err := tracker.publishEvent(BidEventsTopic, string(payload)); err != nil {
			tracker.Log.WithError(err).Errorf("Couldn't Publish Bid Event For Sale %s, User %s", event.SaleID, event.UserID)
			continue
		}

		tracker.Log.WithFields(logrus.Fields{
			"action": event.ActionType,
			"sale":   event.SaleID,
		}).Info("Bid Event Published")
	}
}

func (tracker *TrackerMQTT) publishEvent(topic string, message string) error {
	trackerToken := tracker.Client.Publish(topic, 0, false, message)

	timeout := trackerToken.WaitTimeout(mqttTimeout)
	if !timeout {
		return errors.New("Timeout Sending To Broker")
	}

	if trackerToken.Error() != nil {
		return trackerToken.Error()
	}

	return nil
}
