package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisCatalogInvalidatorWithClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	t.Run("defaults to the catalog channel", func(t *testing.T) {
		invalidator := NewRedisCatalogInvalidatorWithClient(client)
		assert.Equal(t, defaultChannel, invalidator.channel)
		assert.False(t, invalidator.ownsClient)
	})

	t.Run("options override channel and logger", func(t *testing.T) {
		invalidator := NewRedisCatalogInvalidatorWithClient(client,
			WithInvalidatorChannel("catalog:test"))
		assert.Equal(t, "catalog:test", invalidator.channel)
	})

	t.Run("close does not close a shared client", func(t *testing.T) {
		invalidator := NewRedisCatalogInvalidatorWithClient(client)
		assert.NoError(t, invalidator.Close())
		// Shared client still usable for another invalidator
		assert.NotNil(t, NewRedisCatalogInvalidatorWithClient(client))
	})
}
