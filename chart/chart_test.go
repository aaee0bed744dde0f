package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvergence(t *testing.T) {
	t.Run("renders every series", func(t *testing.T) {
		var buf bytes.Buffer

		err := Convergence(&buf, "frozen lake",
			Series{Name: "random", Deltas: []float64{0.5, 0.25, 0.125}},
			Series{Name: "greedy", Deltas: []float64{0.4, 0.1}},
		)

		require.NoError(t, err)
		require.Contains(t, buf.String(), "frozen lake")
		require.Contains(t, buf.String(), "random")
		require.Contains(t, buf.String(), "greedy")
	})

	t.Run("needs at least one series", func(t *testing.T) {
		var buf bytes.Buffer

		require.Error(t, Convergence(&buf, "empty"))
	})
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "convergence.html")

	err := WriteFile(path, "bandit walk", Series{Name: "right", Deltas: []float64{1, 0}})

	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "bandit walk")
}
