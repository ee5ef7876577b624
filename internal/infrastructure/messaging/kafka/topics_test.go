package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKafkaConn struct {
	created    []kafka.TopicConfig
	createFunc func(topics ...kafka.TopicConfig) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
	closed     bool
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		if err := m.createFunc(topics...); err != nil {
			return err
		}
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error {
	m.closed = true
	return nil
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEventEnvelope("noi.rendered", "lienpilot-apiserver", map[string]string{"invoice_number": "INV-9"})
	require.NoError(t, err)
	assert.Len(t, env.EventID, 36)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)
	env.TraceID = "trace-1"

	msg, err := env.ToMessage(TopicNOIRendered, []byte("INV-9"))
	require.NoError(t, err)
	assert.Equal(t, "noi.rendered", msg.Headers["event_type"])
	assert.Equal(t, "trace-1", msg.Headers["trace_id"])
	assert.Equal(t, env.EventID, msg.Headers["event_id"])

	back, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, back.DecodePayload(&payload))
	assert.Equal(t, "INV-9", payload["invoice_number"])
}

func TestEventEnvelope_Errors(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
	_, err = MessageToEventEnvelope(&Message{Value: []byte("{not json")})
	assert.Error(t, err)

	empty := &EventEnvelope{EventID: "e"}
	var v map[string]string
	assert.Error(t, empty.DecodePayload(&v))

	wrongType := &EventEnvelope{EventID: "e", Payload: []byte(`[1,2]`)}
	assert.Error(t, wrongType.DecodePayload(&v))
}

func TestCreateTopic(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)

	require.NoError(t, m.CreateTopic(context.Background(), TopicConfig{
		Name: TopicNOIRendered, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: 1000, CleanupPolicy: "delete",
	}))
	require.Len(t, conn.created, 1)
	assert.Len(t, conn.created[0].ConfigEntries, 2)

	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{}))
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "x"}))
}

func TestCreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(...kafka.TopicConfig) error { return errors.New("topic already exists") },
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: topics[0]}}, nil
		},
	}
	m := NewTopicManagerWithConn(conn, nil)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))

	conn.readFunc = nil
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestEnsureDefaultTopics(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)
	require.NoError(t, m.EnsureDefaultTopics(context.Background(), 0))

	var names []string
	for _, c := range conn.created {
		names = append(names, c.Topic)
		assert.Equal(t, 1, c.ReplicationFactor)
	}
	assert.Equal(t, []string{TopicNOIRequested, TopicNOIRendered, TopicSequenceGenerated, TopicExportCompleted, TopicDeadLetter}, names)

	require.NoError(t, m.Close())
	assert.True(t, conn.closed)
}

//Personal.AI order the ending
