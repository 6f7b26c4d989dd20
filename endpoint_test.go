package xapiand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoints(t *testing.T) {
	set := ResolveEndpoints([]string{"/data/shard0"}, []RemoteLocation{{Host: "10.0.0.2", Port: 9999}}, 5*time.Second)
	require.Len(t, set, 2)

	assert.Equal(t, EndpointLocal, set[0].Kind())
	assert.Equal(t, "/data/shard0", set[0].Path())

	assert.True(t, set[1].IsRemote())
	assert.Equal(t, "10.0.0.2", set[1].Host())
	assert.Equal(t, 9999, set[1].Port())
	assert.Equal(t, 5*time.Second, set[1].Timeout())
	assert.Equal(t, "10.0.0.2:9999", set[1].String())
}

func TestEndpoint_Key(t *testing.T) {
	t.Run("TimeoutNotPartOfIdentity", func(t *testing.T) {
		a := RemoteEndpoint("db1", 8890, time.Second)
		b := RemoteEndpoint("db1", 8890, time.Minute)
		assert.Equal(t, a.Key(), b.Key())
		assert.NotEqual(t, a, b)
	})

	t.Run("LocalPathsCleaned", func(t *testing.T) {
		assert.Equal(t, LocalEndpoint("/data/shard0").Key(), LocalEndpoint("/data/./shard0/").Key())
	})

	t.Run("LocalAndRemoteDiffer", func(t *testing.T) {
		assert.NotEqual(t, LocalEndpoint("db1:8890").Key(), RemoteEndpoint("db1", 8890, 0).Key())
	})

	t.Run("SetOrderMatters", func(t *testing.T) {
		a, b := LocalEndpoint("/a"), LocalEndpoint("/b")
		assert.NotEqual(t, EndpointSet{a, b}.Key(), EndpointSet{b, a}.Key())
		assert.Equal(t, EndpointSet{a, b}.Key(), EndpointSet{LocalEndpoint("/a"), LocalEndpoint("/b")}.Key())
	})
}
