// Package logger holds the silent Logger used when a Balancer, publisher,
// source or reporter is built without one.
package logger

import "github.com/arloliu/rebalance/types"

// discard drops every record. Fatal never exits, so a component running
// without a logger cannot terminate the process.
type discard struct{}

var _ types.Logger = discard{}

// NewNop returns a Logger that drops every record.
//
// Example:
//
//	b, err := rebalance.NewBalancer(&cfg, rebalance.WithLogger(rebalance.NewNopLogger()))
func NewNop() types.Logger {
	return discard{}
}

// OrNop returns log, or a discarding Logger when log is nil.
func OrNop(log types.Logger) types.Logger {
	if log == nil {
		return discard{}
	}

	return log
}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Fatal(string, ...any) {}
