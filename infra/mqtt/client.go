package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/loadplan/core/model"
	coremon "github.com/kilianp07/loadplan/core/monitoring"
	coremqtt "github.com/kilianp07/loadplan/core/mqtt"
	"github.com/kilianp07/loadplan/infra/logger"
)

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "loadplan"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	AckTopic    string          `json:"ack_topic"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	Retain      bool            `json:"retain"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	// AckTimeoutSeconds bounds how long a published plan waits for its ack.
	AckTimeoutSeconds int         `json:"ack_timeout_seconds"`
	TLSConfig         *tls.Config `json:"-"`
}

// AckTimeout returns the configured ack timeout, DefaultAckTimeout when unset.
func (c Config) AckTimeout() time.Duration {
	if c.AckTimeoutSeconds <= 0 {
		return DefaultAckTimeout
	}
	return time.Duration(c.AckTimeoutSeconds) * time.Second
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

func (c Config) prefix() string {
	if c.TopicPrefix == "" {
		return DefaultTopicPrefix
	}
	return c.TopicPrefix
}

// PlanTopic returns the topic a plan for vehicleID is published on.
func (c Config) PlanTopic(vehicleID string) string {
	if vehicleID == "" {
		vehicleID = "unassigned"
	}
	return fmt.Sprintf("%s/vehicle/%s/plan", c.prefix(), vehicleID)
}

// AckTopicOrDefault returns the topic acknowledgments are read from.
func (c Config) AckTopicOrDefault() string {
	if c.AckTopic == "" {
		return c.prefix() + "/ack"
	}
	return c.AckTopic
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements the core Publisher interface using Eclipse Paho.
type PahoClient struct {
	cli      pahoClient
	cfg      Config
	ackTopic string
	qos      map[string]byte

	mu         sync.Mutex
	ackChans   map[string]chan struct{}
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var _ coremqtt.Publisher = (*PahoClient)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ACK topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		cfg:        cfg,
		ackTopic:   cfg.AckTopicOrDefault(),
		ackChans:   make(map[string]chan struct{}),
		logger:     log,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(pc.ackTopic, pc.qosFor("ack"), pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificates", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// Ack is the payload a vehicle sends back once a plan has been loaded.
type Ack struct {
	MessageID string `json:"message_id"`
	PlanID    string `json:"plan_id,omitempty"`
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var a Ack
	if err := json.Unmarshal(msg.Payload(), &a); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.ackChans[a.MessageID]
	if !ok {
		p.logger.Debugf("ignoring ack for unknown message %s", a.MessageID)
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
	p.logger.Infof("received ack %s", a.MessageID)
}

// PlanMessage is the wire form of a plan sent to a vehicle.
type PlanMessage struct {
	MessageID   string         `json:"message_id"`
	PlanID      string         `json:"plan_id"`
	VehicleID   string         `json:"vehicle_id,omitempty"`
	Capacity    float64        `json:"capacity"`
	TotalWeight float64        `json:"total_weight"`
	Efficiency  float64        `json:"efficiency"`
	Orders      []PlanOrderRef `json:"orders"`
	Timestamp   int64          `json:"timestamp"`
}

// PlanOrderRef identifies one order to load.
type PlanOrderRef struct {
	ID       string  `json:"id"`
	Client   string  `json:"client,omitempty"`
	WeightKg float64 `json:"weight_kg"`
}

// NewPlanMessage converts a plan to its wire form under messageID.
func NewPlanMessage(messageID string, plan model.Plan) PlanMessage {
	refs := make([]PlanOrderRef, len(plan.Selected))
	for i, o := range plan.Selected {
		refs[i] = PlanOrderRef{ID: o.ID, Client: o.Client, WeightKg: o.WeightKg}
	}
	return PlanMessage{
		MessageID:   messageID,
		PlanID:      plan.ID,
		VehicleID:   plan.VehicleID,
		Capacity:    plan.Capacity,
		TotalWeight: plan.Stats.TotalWeight,
		Efficiency:  plan.Stats.Efficiency,
		Orders:      refs,
		Timestamp:   time.Now().UnixMilli(),
	}
}

// PublishPlan sends the plan to the vehicle specific topic and returns the
// message identifier used for acknowledgment tracking.
func (p *PahoClient) PublishPlan(plan model.Plan) (string, error) {
	msgID := uuid.NewString()
	payload, err := json.Marshal(NewPlanMessage(msgID, plan))
	if err != nil {
		return "", err
	}

	topic := p.cfg.PlanTopic(plan.VehicleID)
	// Registered before publishing so an early ack is not lost.
	p.mu.Lock()
	p.ackChans[msgID] = make(chan struct{}, 1)
	p.mu.Unlock()

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qosFor("plan"), p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent plan %s as %s to %s", plan.ID, msgID, topic)
			return msgID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}

	p.mu.Lock()
	delete(p.ackChans, msgID)
	p.mu.Unlock()
	tags := coremon.Tags("mqtt", plan.VehicleID)
	tags["plan_id"] = plan.ID
	coremon.CaptureException(publishErr, tags)
	return "", fmt.Errorf("publish plan %s: %w", plan.ID, publishErr)
}

// WaitForAck blocks until an ACK for the given message ID is received or timeout.
func (p *PahoClient) WaitForAck(messageID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	ch := p.ackChans[messageID]
	p.mu.Unlock()
	if ch == nil {
		return false, fmt.Errorf("%s: %w", messageID, coremqtt.ErrUnknownMessage)
	}
	defer func() {
		p.mu.Lock()
		delete(p.ackChans, messageID)
		p.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, fmt.Errorf("%s: %w", messageID, coremqtt.ErrAckTimeout)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
