package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"scamshield-lab/internal/config"
	"scamshield-lab/pkg/logger"
)

const (
	defaultStreamName    = "SCAMSHIELD_ANALYSES"
	defaultSubjectPrefix = "scamshield"
	streamRetention      = 7 * 24 * time.Hour
	streamMaxMsgs        = 100_000
)

// ErrNotConnected is returned when the NATS connection is down or closed
var ErrNotConnected = errors.New("nats: not connected")

// NATSPublisher writes scam verdict events to a JetStream stream.
// Publishes wait for the stream ack and carry the event ID for dedup.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	prefix string
	log    *logger.Logger
	closed atomic.Bool
}

// NewNATSPublisher dials NATS and makes sure the analysis stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")
	cfg = withNATSDefaults(cfg)

	conn, err := dial(cfg.URL, log)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(ctx, js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info().
		Str("stream", cfg.StreamName).
		Str("subjects", cfg.SubjectPrefix+".>").
		Msg("analysis stream ready")

	return &NATSPublisher{conn: conn, js: js, prefix: cfg.SubjectPrefix, log: log}, nil
}

func withNATSDefaults(cfg config.NATSConfig) config.NATSConfig {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = defaultStreamName
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = defaultSubjectPrefix
	}
	return cfg
}

func dial(url string, log *logger.Logger) (*nats.Conn, error) {
	log.Info().Str("url", url).Msg("connecting to NATS")

	conn, err := nats.Connect(url,
		nats.Name("scamshield-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("lost NATS connection")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("server", c.ConnectedUrl()).Msg("NATS connection restored")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	return conn, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, cfg config.NATSConfig) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "ScamShield scam verdicts",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamRetention,
		MaxMsgs:     streamMaxMsgs,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("stream %s: %w", cfg.StreamName, err)
	}
	return nil
}

// Close drains nothing; pending publishes fail with ErrNotConnected afterwards
func (p *NATSPublisher) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.conn.Close()
	}
}

// IsConnected reports whether publishes can currently reach the server
func (p *NATSPublisher) IsConnected() bool {
	return !p.closed.Load() && p.conn.IsConnected()
}

// PublishAnalysisEvent publishes one event and waits for the stream ack
func (p *NATSPublisher) PublishAnalysisEvent(ctx context.Context, event *AnalysisEvent) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	subject := SubjectFor(p.prefix, event)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Uint64("seq", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("analysis event stored")
	return nil
}

// Ping satisfies the readiness check
func (p *NATSPublisher) Ping(context.Context) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}
	return nil
}
