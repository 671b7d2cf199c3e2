package types

import (
	"cmp"
	"fmt"
)

// ServerInfo identifies a server that can host regions.
//
// ServerInfo is a comparable value and can be used directly as a map key.
// StartCode distinguishes two incarnations of the same host:port, so a
// restarted server is a different ServerInfo.
//
// ServerInfo deliberately carries no load: load is always derived from a
// ClusterState for the duration of a single call.
type ServerInfo struct {
	// Host is the server hostname or address.
	Host string `json:"host"`

	// Port is the server RPC port.
	Port int `json:"port"`

	// StartCode is the server start timestamp or epoch token.
	StartCode int64 `json:"startCode"`
}

// String returns the canonical "host,port,startcode" server name.
func (s ServerInfo) String() string {
	return fmt.Sprintf("%s,%d,%d", s.Host, s.Port, s.StartCode)
}

// Compare performs a total ordering over server identities.
//
// Ordering rules:
//   - Host in string order
//   - Then Port ascending
//   - Then StartCode ascending
//
// Returns:
//   - int: -1 if s < o, 0 if equal, +1 if s > o
func (s ServerInfo) Compare(o ServerInfo) int {
	if c := cmp.Compare(s.Host, o.Host); c != 0 {
		return c
	}
	if c := cmp.Compare(s.Port, o.Port); c != 0 {
		return c
	}

	return cmp.Compare(s.StartCode, o.StartCode)
}
