package kvutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rebalance/types"
)

func TestServerToken(t *testing.T) {
	tests := []struct {
		server types.ServerInfo
		want   string
	}{
		{types.ServerInfo{Host: "rs-1", Port: 16020, StartCode: 7}, "rs-1_16020_7"},
		{types.ServerInfo{Host: "10.0.0.1", Port: 1, StartCode: 2}, "10_2e0_2e0_2e1_1_2"},
		{types.ServerInfo{Host: "h:x/y", Port: 0, StartCode: -1}, "h_3ax_2fy_0_-1"},
		{types.ServerInfo{Host: "a_b", Port: 1, StartCode: 1}, "a_5fb_1_1"},
		{types.ServerInfo{Host: "hé", Port: 1, StartCode: 1}, "h_c3_a9_1_1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			token := ServerToken(tt.server)
			require.Equal(t, tt.want, token)
			require.True(t, ValidToken(token))
		})
	}
}

func TestServerToken_Distinct(t *testing.T) {
	servers := []types.ServerInfo{
		{Host: "a.b", Port: 1, StartCode: 1},
		{Host: "a_b", Port: 1, StartCode: 1},
		{Host: "a:b", Port: 1, StartCode: 1},
		{Host: "a_2eb", Port: 1, StartCode: 1},
		{Host: "a", Port: 11, StartCode: 1},
		{Host: "a_1", Port: 1, StartCode: 1},
		{Host: "a", Port: 1, StartCode: 11},
	}

	seen := make(map[string]types.ServerInfo, len(servers))
	for _, s := range servers {
		token := ServerToken(s)
		prev, dup := seen[token]
		require.False(t, dup, "%v and %v share token %q", prev, s, token)
		seen[token] = s
	}
}

func TestValidToken(t *testing.T) {
	require.True(t, ValidToken("rebalance"))
	require.True(t, ValidToken("rb_reports-1"))
	require.False(t, ValidToken(""))
	require.False(t, ValidToken("a.b"))
	require.False(t, ValidToken("a b"))
	require.False(t, ValidToken("rb*"))
	require.False(t, ValidToken("rb>"))
}
