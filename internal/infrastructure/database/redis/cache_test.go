package redis

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mr     *miniredis.Miniredis
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	s.client, s.mr = newTestClient(s.T())
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

type advice struct {
	State   string `json:"state"`
	Urgency string `json:"urgency"`
}

func (s *CacheTestSuite) TestSetGet() {
	ctx := context.Background()
	want := advice{State: "CA", Urgency: "high"}
	s.Require().NoError(s.cache.Set(ctx, "advice:INV-1", want, time.Minute))
	s.True(s.mr.Exists("test:advice:INV-1"))

	var got advice
	s.Require().NoError(s.cache.Get(ctx, "advice:INV-1", &got))
	s.Equal(want, got)

	ok, err := s.cache.Exists(ctx, "advice:INV-1")
	s.NoError(err)
	s.True(ok)
}

func (s *CacheTestSuite) TestGet_Miss() {
	var got advice
	err := s.cache.Get(context.Background(), "absent", &got)
	s.Equal(ErrCacheMiss, err)
	s.True(errors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.Require().NoError(s.mr.Set("test:bad", "{not json"))
	var got advice
	err := s.cache.Get(context.Background(), "bad", &got)
	s.True(errors.IsCode(err, errors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_TTLJitteredWithinTenPercent() {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		key := "k" + string(rune('a'+i))
		s.Require().NoError(s.cache.Set(ctx, key, 1, 100*time.Second))
		ttl := s.mr.TTL("test:" + key)
		s.GreaterOrEqual(ttl, 90*time.Second)
		s.LessOrEqual(ttl, 110*time.Second)
	}
}

func (s *CacheTestSuite) TestSet_DefaultTTLAndExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "k", "v", 0))
	s.Greater(s.mr.TTL("test:k"), 13*time.Minute)

	s.mr.FastForward(20 * time.Minute)
	var v string
	s.Equal(ErrCacheMiss, s.cache.Get(ctx, "k", &v))
}

func (s *CacheTestSuite) TestSet_Unserializable() {
	err := s.cache.Set(context.Background(), "ch", make(chan int), time.Minute)
	s.Equal(ErrSerializationFailed, err)
}

func (s *CacheTestSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "a", 1, time.Minute))
	s.Require().NoError(s.cache.Set(ctx, "b", 2, time.Minute))
	s.NoError(s.cache.Delete(ctx))
	s.NoError(s.cache.Delete(ctx, "a", "b"))
	s.False(s.mr.Exists("test:a"))
	s.False(s.mr.Exists("test:b"))
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	ctx := context.Background()
	for _, k := range []string{"advice:1", "advice:2", "advice:3", "letter:1"} {
		s.Require().NoError(s.cache.Set(ctx, k, k, time.Minute))
	}
	n, err := s.cache.DeleteByPrefix(ctx, "advice:")
	s.NoError(err)
	s.EqualValues(3, n)
	s.True(s.mr.Exists("test:letter:1"))
}

func (s *CacheTestSuite) TestGetOrSet_LoadsOnceThenHits() {
	ctx := context.Background()
	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return advice{State: "TX", Urgency: "medium"}, nil
	}

	var got advice
	s.Require().NoError(s.cache.GetOrSet(ctx, "adv", &got, time.Minute, loader))
	s.Equal("TX", got.State)

	var again advice
	s.Require().NoError(s.cache.GetOrSet(ctx, "adv", &again, time.Minute, loader))
	s.Equal(got, again)
	s.EqualValues(1, atomic.LoadInt32(&calls))
}

func (s *CacheTestSuite) TestGetOrSet_ConcurrentMissesShareLoader() {
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.cache.GetOrSet(ctx, "shared", &results[i], time.Minute, loader)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	s.LessOrEqual(atomic.LoadInt32(&calls), int32(8))
	s.GreaterOrEqual(atomic.LoadInt32(&calls), int32(1))
	for _, r := range results {
		s.Equal("v", r)
	}
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	boom := errors.New(errors.ErrCodeInternal, "boom")
	var v string
	err := s.cache.GetOrSet(context.Background(), "k", &v, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	s.Equal(boom, err)
	s.False(s.mr.Exists("test:k"))
}

func (s *CacheTestSuite) TestGetOrSet_BrokenCacheStillLoads() {
	s.Require().NoError(s.mr.Set("test:k", "{broken"))
	var v string
	err := s.cache.GetOrSet(context.Background(), "k", &v, time.Minute, func(context.Context) (interface{}, error) {
		return "fresh", nil
	})
	s.NoError(err)
	s.Equal("fresh", v)
}

type storedDoc struct {
	Filename string `json:"filename"`
	Bytes    []byte `json:"bytes"`
}

func TestDocumentCache(t *testing.T) {
	client, mr := newTestClient(t)
	dc := NewDocumentCache(client, nil, nil)
	ctx := context.Background()

	key := ContentKey("CA", "letter text")
	var got storedDoc
	assert.Equal(t, ErrCacheMiss, dc.Get(ctx, key, &got))

	doc := storedDoc{Filename: "NOI_INV-1_Acme_2025-03-18.pdf", Bytes: []byte("%PDF-1.3")}
	require.NoError(t, dc.Set(ctx, key, doc, 0))
	assert.True(t, mr.Exists("lienpilot:doc:"+key))
	assert.Greater(t, mr.TTL("lienpilot:doc:"+key), 21*time.Hour)

	require.NoError(t, dc.Get(ctx, key, &got))
	assert.Equal(t, doc, got)

	require.NoError(t, dc.Delete(ctx, key))
	assert.Equal(t, ErrCacheMiss, dc.Get(ctx, key, &got))
}

func TestDocumentCache_RejectsOversizeAndNil(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), RedisConfig{Addr: mr.Addr(), MaxDocumentSize: 16}, nil)
	require.NoError(t, err)
	dc := NewDocumentCache(client, nil, nil)

	assert.Equal(t, ErrDocumentTooLarge, dc.Set(context.Background(), "k", storedDoc{Bytes: []byte("0123456789")}, 0))
	assert.True(t, errors.IsCode(dc.Set(context.Background(), "k", nil, 0), errors.ErrCodeBadRequest))
	assert.False(t, mr.Exists("lienpilot:doc:k"))
}

func TestContentKey(t *testing.T) {
	a := ContentKey("CA", "text")
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentKey("CA", "text"))
	assert.NotEqual(t, a, ContentKey("CAt", "ext"))
	assert.Equal(t, strings.ToLower(a), a)
}

//Personal.AI order the ending
