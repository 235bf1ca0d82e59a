package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinProfiles(t *testing.T) {
	reg := NewRegistry()

	rec := reg.ProfileFor(NodeRecommendation)
	require.True(t, rec.ConsistencyFanout)
	require.Equal(t, CriticalityHigh, rec.Criticality)
	require.Len(t, rec.Checks, 5)

	ctxp := reg.ProfileFor(NodeContext)
	require.Equal(t, CriticalityLow, ctxp.Criticality)
	require.NotContains(t, ctxp.Checks, CategoryAccuracy)
}

func TestRegistry_UnknownTypeGetsConservativeFallback(t *testing.T) {
	reg := NewRegistry()
	p := reg.ProfileFor(NodeType("chart"))
	require.Len(t, p.Checks, 5)
	require.Equal(t, CriticalityMedium, p.Criticality)
}

func TestRegistry_RegisterNewType(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NodeType("chart"), Profile{
		Checks:      []Category{CategoryAccuracy},
		Criticality: CriticalityLow,
	})
	p := reg.ProfileFor(NodeType("chart"))
	require.Equal(t, []Category{CategoryAccuracy}, p.Checks)
	require.Contains(t, reg.Types(), NodeType("chart"))
}
