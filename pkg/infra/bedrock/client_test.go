package bedrock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClient_SameKeyConcurrent_ReturnsSameInstance(t *testing.T) {
	t.Parallel()

	c := NewClient(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds := Credentials{AccessKey: "AKIA_TEST", SecretKey: "SECRET_TEST", Region: "us-east-1"}

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	runtimeClients := make([]RuntimeClient, goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			cl, err := c.BuildClient(ctx, creds)
			if err != nil {
				t.Errorf("BuildClient failed: %v", err)
				return
			}
			runtimeClients[i] = cl
		}()
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, runtimeClients[0], runtimeClients[i])
	}
}

func TestBuildClient_DifferentRegions_ReturnDifferentInstances(t *testing.T) {
	c := NewClient(nil)
	ctx := context.Background()

	east, err := c.BuildClient(ctx, Credentials{AccessKey: "AKIA_TEST", SecretKey: "SECRET_TEST", Region: "us-east-1"})
	require.NoError(t, err)
	west, err := c.BuildClient(ctx, Credentials{AccessKey: "AKIA_TEST", SecretKey: "SECRET_TEST", Region: "us-west-2"})
	require.NoError(t, err)

	assert.NotSame(t, east, west)
}

func TestCredentials_DefaultRegion(t *testing.T) {
	assert.Equal(t, "us-east-1", Credentials{}.regionOrDefault())
	assert.Equal(t, Credentials{AccessKey: "a"}.key(), Credentials{AccessKey: "a", Region: "us-east-1"}.key())
}
