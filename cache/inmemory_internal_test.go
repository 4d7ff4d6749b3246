package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemoryInternalSuite struct {
	suite.Suite
}

func TestInMemoryInternalSuite(t *testing.T) {
	suite.Run(t, new(InMemoryInternalSuite))
}

func (s *InMemoryInternalSuite) TestSetGetDelete() {
	ctx := context.Background()
	mem := NewInMemory[string, string]()
	s.T().Cleanup(func() { _ = mem.Close() })

	s.NoError(mem.Set(ctx, "greeting", "hello", 0))

	value, found, err := mem.Get(ctx, "greeting")
	s.NoError(err)
	s.True(found)
	s.Equal("hello", value)

	exists, err := mem.Exists(ctx, "greeting")
	s.NoError(err)
	s.True(exists)

	s.NoError(mem.Delete(ctx, "greeting"))
	_, found, err = mem.Get(ctx, "greeting")
	s.NoError(err)
	s.False(found)
}

func (s *InMemoryInternalSuite) TestValueIdentityPreserved() {
	ctx := context.Background()
	mem := NewInMemory[string, map[string]string]()
	s.T().Cleanup(func() { _ = mem.Close() })

	original := map[string]string{"k": "v"}
	s.NoError(mem.Set(ctx, "doc", original, 0))

	cached, found, err := mem.Get(ctx, "doc")
	s.NoError(err)
	s.True(found)

	// Mutations through the cached value must be visible to the original,
	// proving no copy or serialization round trip happened.
	cached["extra"] = "added"
	s.Equal("added", original["extra"])
}

func (s *InMemoryInternalSuite) TestExpiryAndCleanup() {
	ctx := context.Background()
	mem := NewInMemory[string, string]()
	s.T().Cleanup(func() { _ = mem.Close() })

	s.NoError(mem.Set(ctx, "short", "lived", 30*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	_, found, err := mem.Get(ctx, "short")
	s.NoError(err)
	s.False(found)

	// Explicitly exercise the cleanup path.
	mem.items.Store("stale", &inMemoryItem[string]{
		value:      "x",
		expiration: time.Now().Add(-time.Second),
	})
	mem.cleanup()
	exists, err := mem.Exists(ctx, "stale")
	s.NoError(err)
	s.False(exists)
}

func (s *InMemoryInternalSuite) TestFlush() {
	ctx := context.Background()
	mem := NewInMemory[string, int]()
	s.T().Cleanup(func() { _ = mem.Close() })

	s.NoError(mem.Set(ctx, "a", 1, 0))
	s.NoError(mem.Set(ctx, "b", 2, 0))
	s.NoError(mem.Flush(ctx))

	for _, key := range []string{"a", "b"} {
		exists, err := mem.Exists(ctx, key)
		s.NoError(err)
		s.False(exists)
	}
}

func (s *InMemoryInternalSuite) TestCloseIsIdempotent() {
	mem := NewInMemory[string, string]()
	s.NoError(mem.Close())
	s.NoError(mem.Close())
}
