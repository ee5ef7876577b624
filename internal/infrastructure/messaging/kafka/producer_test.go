package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/LienPilot/pkg/errors"
)

type mockKafkaWriter struct {
	mu        sync.Mutex
	written   []kafka.Message
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    bool
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.written = append(m.written, msgs...)
	m.mu.Unlock()
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed = true
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}, MaxRetries: -1}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}, Security: SecurityConfig{SASLEnabled: true, SASLMechanism: "PLAIN"}}))
}

func TestNewProducer_UnsupportedSASL(t *testing.T) {
	_, err := NewProducer(ProducerConfig{
		Brokers:  []string{"b:9092"},
		Security: SecurityConfig{SASLEnabled: true, SASLMechanism: "GSSAPI", SASLUsername: "u", SASLPassword: "p"},
	}, nil)
	assert.Error(t, err)
}

func TestNewProducer_Builds(t *testing.T) {
	p, err := NewProducer(ProducerConfig{
		Brokers:          []string{"b:9092"},
		Acks:             "all",
		CompressionCodec: "snappy",
		Security:         SecurityConfig{SASLEnabled: true, SASLMechanism: "SCRAM-SHA-512", SASLUsername: "u", SASLPassword: "p"},
	}, nil)
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, 4, w.MaxAttempts)
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   TopicNOIRendered,
		Key:     []byte("INV-1"),
		Value:   []byte(`{"ok":true}`),
		Headers: map[string]string{"b": "2", "a": "1"},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicNOIRendered, w.written[0].Topic)
	assert.Equal(t, "INV-1", string(w.written[0].Key))
	assert.Equal(t, "a", w.written[0].Headers[0].Key)
	assert.False(t, w.written[0].Time.IsZero())

	m := p.GetMetrics()
	assert.EqualValues(t, 1, m.MessagesSent)
	assert.EqualValues(t, 11, m.BytesSent)
	assert.False(t, m.LastSentAt.IsZero())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Value: []byte("x")}))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t"}))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t", Value: make([]byte, 1024*1024+1)}))
}

func TestPublish_WriterError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error { return errors.New("leader not available") }}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMessagePublishFailed))
	assert.EqualValues(t, 1, p.GetMetrics().MessagesFailed)
}

func TestPublishEvent(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	id, err := p.PublishEvent(context.Background(), TopicSequenceGenerated, "CA", "sequence.generated", "lienpilot", map[string]int{"steps": 4})
	require.NoError(t, err)
	require.Len(t, w.written, 1)

	env, err := MessageToEventEnvelope(&Message{Value: w.written[0].Value})
	require.NoError(t, err)
	assert.Equal(t, id, env.EventID)
	assert.Equal(t, "sequence.generated", env.EventType)
	var payload map[string]int
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, 4, payload["steps"])

	_, err = p.PublishEvent(context.Background(), "t", "k", "x", "y", make(chan int))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
}

func TestPublishBatch(t *testing.T) {
	msgs := []*ProducerMessage{{Topic: "a", Value: []byte("1")}, {Topic: "b", Value: []byte("2")}}

	p := newTestProducer(&mockKafkaWriter{})
	res, err := p.PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	partial := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return kafka.WriteErrors{nil, errors.New("too large")}
	}}
	res, err = newTestProducer(partial).PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "b", res.Errors[0].Topic)

	total := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error { return errors.New("down") }}
	res, err = newTestProducer(total).PublishBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, -1, res.Errors[0].Index)

	_, err = p.PublishBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	assert.ErrorIs(t, p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")}), ErrProducerClosed)
	_, err := p.PublishBatch(context.Background(), []*ProducerMessage{{Topic: "t", Value: []byte("x")}})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

//Personal.AI order the ending
