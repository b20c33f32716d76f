package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileNameNonSplitUsesLiteralSuffix(t *testing.T) {
	require.Equal(t, "gs_cp_3_1.dat", fileName(3, 0, 1))
}

func TestFileNameSplitUsesSplitID(t *testing.T) {
	require.Equal(t, "gs_cp_3_2.dat", fileName(3, 2, 3))
}

func TestCheckFileNameBoundaryScenarios(t *testing.T) {
	cases := []struct {
		name      string
		wantPg    PartitionGroupID
		wantSplit SplitID
		wantOK    bool
	}{
		{"gs_cp_7_2.dat", 7, 2, true},
		{"gs_cp_7.dat", 0, 0, false},
		{"gs_cp_a_2.dat", 0, 0, false},
		{"gs_cp_7_2.dat.bak", 0, 0, false},
	}
	for _, tc := range cases {
		pg, split, ok := CheckFileName(tc.name)
		require.Equalf(t, tc.wantOK, ok, "CheckFileName(%q)", tc.name)
		if !ok {
			continue
		}
		require.Equalf(t, tc.wantPg, pg, "CheckFileName(%q) pgID", tc.name)
		require.Equalf(t, tc.wantSplit, split, "CheckFileName(%q) splitID", tc.name)
	}
}

func TestCheckFileNameRoundTripsFileName(t *testing.T) {
	for pg := PartitionGroupID(0); pg < 5; pg++ {
		for split := SplitID(0); split < 3; split++ {
			name := fileName(pg, split, 3)
			gotPg, gotSplit, ok := CheckFileName(name)
			require.Truef(t, ok, "CheckFileName(%q)", name)
			require.Equal(t, pg, gotPg)
			require.Equal(t, split, gotSplit)
		}
	}
}

func TestCheckFileNameAcceptsNonSplitLiteralSuffix(t *testing.T) {
	pg, split, ok := CheckFileName("gs_cp_9_1.dat")
	require.True(t, ok)
	require.EqualValues(t, 9, pg)
	require.EqualValues(t, 1, split)
}
