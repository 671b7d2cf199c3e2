package testing

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/types"
)

// fatalRecorder captures Fatalf instead of failing the enclosing test.
type fatalRecorder struct {
	testing.TB
	failed bool
	msg    string
}

func (r *fatalRecorder) Helper() {}

func (r *fatalRecorder) Fatalf(format string, args ...any) {
	r.failed = true
	r.msg = fmt.Sprintf(format, args...)
	runtime.Goexit()
}

func recordFatal(t *testing.T, fn func(tb testing.TB)) *fatalRecorder {
	t.Helper()

	rec := &fatalRecorder{TB: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(rec)
	}()
	<-done

	return rec
}

func testRegions(n int) []types.Region {
	regions := make([]types.Region, n)
	for i := range regions {
		regions[i] = types.Region{Table: "t", StartKey: fmt.Sprintf("%03d", i), EndKey: fmt.Sprintf("%03d", i+1)}
	}

	return regions
}

func TestAssertBulkBalanced(t *testing.T) {
	a := types.ServerInfo{Host: "a", Port: 1, StartCode: 1}
	b := types.ServerInfo{Host: "b", Port: 1, StartCode: 1}
	r := testRegions(6)

	tests := []struct {
		name        string
		regions     []types.Region
		servers     []types.ServerInfo
		assignments map[types.ServerInfo][]types.Region
		wantFail    bool
	}{
		{
			name:        "duplicate servers count once",
			regions:     r,
			servers:     []types.ServerInfo{a, a, b},
			assignments: map[types.ServerInfo][]types.Region{a: r[:3], b: r[3:]},
		},
		{
			name:        "imbalance is still caught with duplicate servers",
			regions:     r[:4],
			servers:     []types.ServerInfo{a, a, b},
			assignments: map[types.ServerInfo][]types.Region{a: r[:3], b: r[3:4]},
			wantFail:    true,
		},
		{
			name:        "server left out of the assignment is caught",
			regions:     r[:2],
			servers:     []types.ServerInfo{a, b},
			assignments: map[types.ServerInfo][]types.Region{a: r[:2]},
			wantFail:    true,
		},
		{
			name:        "unknown server is caught",
			regions:     r[:2],
			servers:     []types.ServerInfo{a},
			assignments: map[types.ServerInfo][]types.Region{a: r[:1], b: r[1:2]},
			wantFail:    true,
		},
		{
			name:        "no servers and no regions passes",
			assignments: map[types.ServerInfo][]types.Region{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordFatal(t, func(tb testing.TB) {
				AssertBulkBalanced(tb, tt.regions, tt.servers, tt.assignments)
			})
			require.Equal(t, tt.wantFail, rec.failed, rec.msg)
		})
	}
}
