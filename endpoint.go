package xapiand

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EndpointKind tells local and remote endpoints apart.
type EndpointKind uint8

const (
	// EndpointLocal is a shard directory on this machine.
	EndpointLocal EndpointKind = iota + 1
	// EndpointRemote is a shard served by another process.
	EndpointRemote
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointLocal:
		return "local"
	case EndpointRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Endpoint identifies one shard. It is either a local path or a remote
// host, port and connect timeout. Endpoints are comparable values.
type Endpoint struct {
	kind    EndpointKind
	path    string
	host    string
	port    int
	timeout time.Duration
}

// LocalEndpoint returns the endpoint of the shard at path.
func LocalEndpoint(path string) Endpoint {
	return Endpoint{kind: EndpointLocal, path: filepath.Clean(path)}
}

// RemoteEndpoint returns the endpoint of the shard served at host:port.
// timeout bounds connecting to it.
func RemoteEndpoint(host string, port int, timeout time.Duration) Endpoint {
	return Endpoint{kind: EndpointRemote, host: host, port: port, timeout: timeout}
}

func (e Endpoint) Kind() EndpointKind     { return e.kind }
func (e Endpoint) Path() string           { return e.path }
func (e Endpoint) Host() string           { return e.host }
func (e Endpoint) Port() int              { return e.port }
func (e Endpoint) Timeout() time.Duration { return e.timeout }
func (e Endpoint) IsRemote() bool         { return e.kind == EndpointRemote }

// Key returns the identity of the shard. Remote endpoints that differ only
// in timeout address the same shard and share a key.
func (e Endpoint) Key() string {
	if e.kind == EndpointRemote {
		return "remote:" + e.address()
	}
	return "local:" + e.path
}

func (e Endpoint) address() string {
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

func (e Endpoint) String() string {
	if e.kind == EndpointRemote {
		return e.address()
	}
	return e.path
}

// EndpointSet is an ordered list of endpoints. The position of an endpoint
// is the index of its shard in the composite database.
type EndpointSet []Endpoint

// Key returns an order-sensitive identity for the set.
func (s EndpointSet) Key() string {
	keys := make([]string, len(s))
	for i, e := range s {
		keys[i] = e.Key()
	}
	return strings.Join(keys, "\x00")
}

func (s EndpointSet) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RemoteLocation is the address of a remote shard.
type RemoteLocation struct {
	Host string
	Port int
}

// ResolveEndpoints builds an endpoint set from local paths followed by remote
// locations, all of which share timeout.
func ResolveEndpoints(paths []string, locations []RemoteLocation, timeout time.Duration) EndpointSet {
	set := make(EndpointSet, 0, len(paths)+len(locations))
	for _, p := range paths {
		set = append(set, LocalEndpoint(p))
	}
	for _, l := range locations {
		set = append(set, RemoteEndpoint(l.Host, l.Port, timeout))
	}
	return set
}
