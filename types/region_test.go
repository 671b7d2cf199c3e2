package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionID(t *testing.T) {
	t.Parallel()

	r := Region{Table: "users", StartKey: "a", EndKey: "m"}
	require.Equal(t, "users,a,m", r.ID())
	require.Equal(t, ",,", Region{}.ID())
}

func TestRegionCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a    Region
		b    Region
		want int
	}{
		{Region{Table: "t", StartKey: "a"}, Region{Table: "t", StartKey: "a"}, 0},
		{Region{Table: "a"}, Region{Table: "b"}, -1},
		{Region{Table: "t", StartKey: "b"}, Region{Table: "t", StartKey: "a"}, 1},
		{Region{Table: "t", StartKey: "a", EndKey: "b"}, Region{Table: "t", StartKey: "a", EndKey: "c"}, -1},
		{Region{Table: "b", StartKey: "a"}, Region{Table: "a", StartKey: "z"}, 1},
	}

	for _, tt := range tests {
		got := tt.a.Compare(tt.b)
		switch tt.want {
		case 0:
			require.Equal(t, 0, got)
		case -1:
			require.Less(t, got, 0)
		case 1:
			require.Greater(t, got, 0)
		default:
			t.Fatalf("invalid test case want: %d", tt.want)
		}
	}
}

func TestRegionHashID(t *testing.T) {
	t.Parallel()

	r1 := Region{Table: "users", StartKey: "a", EndKey: "m"}
	r2 := Region{Table: "users", StartKey: "a", EndKey: "m"}
	require.Equal(t, r1.HashID(), r2.HashID())

	// Field boundaries are not ambiguous
	r3 := Region{Table: "ab", StartKey: "c"}
	r4 := Region{Table: "a", StartKey: "bc"}
	require.NotEqual(t, r3.HashID(), r4.HashID())

	require.Equal(t, r1.HashID(), r1.HashIDSeed(0))
	require.NotEqual(t, r1.HashID(), r1.HashIDSeed(12345))
}

func TestServerInfoCompare(t *testing.T) {
	t.Parallel()

	a := ServerInfo{Host: "host-a", Port: 16020, StartCode: 1}
	require.Equal(t, 0, a.Compare(a))
	require.Less(t, a.Compare(ServerInfo{Host: "host-b", Port: 1, StartCode: 0}), 0)
	require.Less(t, a.Compare(ServerInfo{Host: "host-a", Port: 16021, StartCode: 0}), 0)
	require.Greater(t, a.Compare(ServerInfo{Host: "host-a", Port: 16020, StartCode: 0}), 0)

	// A restarted server is a different identity
	restarted := a
	restarted.StartCode = 2
	require.NotEqual(t, a, restarted)
	require.Equal(t, "host-a,16020,1", a.String())
}

func TestRegionPlanValidate(t *testing.T) {
	t.Parallel()

	s1 := ServerInfo{Host: "s1"}
	s2 := ServerInfo{Host: "s2"}
	r := Region{Table: "t"}

	require.NoError(t, RegionPlan{Region: r, Source: s1, Destination: s2}.Validate())
	require.ErrorIs(t, RegionPlan{Region: r, Source: s1, Destination: s1}.Validate(), ErrInvalidPlan)
}
