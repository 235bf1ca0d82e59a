package report

import "sort"

// Criticality of a node's validation profile.
type Criticality string

const (
	CriticalityHigh   Criticality = "high"
	CriticalityMedium Criticality = "medium"
	CriticalityLow    Criticality = "low"
)

// Profile declares which checks apply to a node type and how strictly.
type Profile struct {
	// Checks lists the metric categories scored for this node type.
	Checks []Category

	// ConsistencyFanout marks types whose changes require cross-node
	// consistency re-checking during re-evaluation.
	ConsistencyFanout bool

	Criticality Criticality
}

// Registry maps node types to validation profiles. Adding a node type means
// registering one profile, not touching existing ones.
type Registry struct {
	profiles map[NodeType]Profile
	fallback Profile
}

// NewRegistry returns a registry seeded with the built-in node types.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: map[NodeType]Profile{},
		// Conservative default: unknown node types get every check at
		// medium criticality rather than slipping through unvalidated.
		fallback: Profile{
			Checks:      append([]Category(nil), Categories...),
			Criticality: CriticalityMedium,
		},
	}
	r.Register(NodeScoring, Profile{
		Checks:      []Category{CategoryAccuracy, CategoryConsistency, CategoryCompliance},
		Criticality: CriticalityHigh,
	})
	r.Register(NodeInsight, Profile{
		Checks:      []Category{CategoryAccuracy, CategoryBias, CategoryClarity, CategoryCompliance},
		Criticality: CriticalityHigh,
	})
	r.Register(NodeRecommendation, Profile{
		Checks:            append([]Category(nil), Categories...),
		Criticality:       CriticalityHigh,
		ConsistencyFanout: true,
	})
	r.Register(NodeSummary, Profile{
		Checks:      []Category{CategoryClarity, CategoryConsistency, CategoryBias, CategoryCompliance},
		Criticality: CriticalityMedium,
	})
	r.Register(NodeContext, Profile{
		Checks:      []Category{CategoryClarity, CategoryCompliance},
		Criticality: CriticalityLow,
	})
	return r
}

// Register adds or replaces the profile for a node type.
func (r *Registry) Register(typ NodeType, p Profile) {
	r.profiles[typ] = p
}

// ProfileFor is a pure lookup; unknown types get the conservative fallback.
func (r *Registry) ProfileFor(typ NodeType) Profile {
	if p, ok := r.profiles[typ]; ok {
		return p
	}
	return r.fallback
}

// Types returns the registered node types, sorted.
func (r *Registry) Types() []NodeType {
	out := make([]NodeType, 0, len(r.profiles))
	for t := range r.profiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
