package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCompatibility(t *testing.T) {
	tests := []struct {
		from, to RoadType
		want     bool
	}{
		{House, LocalRoad, true},
		{House, ArterialRoad, false},
		{House, Turnpike, false},
		{LocalRoad, Highway, false},
		{Highway, LocalRoad, false},
		{Highway, Turnpike, true},
		{Turnpike, Landmark, true},
		{Landmark, Highway, false},
		{Landmark, Landmark, false},
		{Turnpike, Turnpike, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanConnect(tt.from, tt.to))
		})
	}
}

func TestCompatibilityTargets(t *testing.T) {
	assert.Equal(t, []RoadType{LocalRoad}, DefaultCompatibility.Targets(House))
	assert.Equal(t, []RoadType{ArterialRoad, Highway, Turnpike}, DefaultCompatibility.Targets(Highway))
}

func TestAsymmetricCompatibility(t *testing.T) {
	// one-way: local roads may feed the turnpike but not the reverse
	oneWay := NewCompatibility(map[RoadType][]RoadType{
		LocalRoad: {Turnpike},
	})

	g := NewGrid(1, 2)
	g.Place(&Tile{Row: 0, Col: 0, Shape: Straight, RoadType: LocalRoad, Rotatable: true, Rotation: 90, SolutionRotation: 90})
	g.Place(&Tile{Row: 0, Col: 1, Shape: TurnpikeShape, RoadType: Turnpike})

	cg := BuildGraphWith(g, CurrentView, oneWay)
	a, b := Position{Row: 0, Col: 0}, Position{Row: 0, Col: 1}
	assert.True(t, cg.Connected(a, b))
	assert.False(t, cg.Connected(b, a))
	assert.Equal(t, 1, cg.EdgeCount())

	assert.True(t, cg.ReachesType(a, Turnpike))
	reached := cg.ReverseReachable([]Position{b})
	assert.True(t, reached.Has(g.Index(a)))
}
