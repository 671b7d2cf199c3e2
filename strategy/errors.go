package strategy

import "github.com/arloliu/rebalance/types"

// ErrNoServers indicates that no servers were provided for assignment.
var ErrNoServers = types.ErrNoServers
