package engine

// twoByOneLevel is a landmark above a turnpike. The landmark starts facing
// away from the hub and needs two quarter turns.
func twoByOneLevel() *Level {
	return &Level{
		ID:       "two-by-one",
		Name:     "two_by_one",
		GridSize: GridSize{Rows: 2, Cols: 1},
		Tiles: []Tile{
			{Row: 0, Col: 0, Shape: LandmarkShape, RoadType: Landmark, Rotatable: true, Rotation: 180, SolutionRotation: 0, LandmarkKind: Diner},
			{Row: 1, Col: 0, Shape: TurnpikeShape, RoadType: Turnpike},
		},
		SolutionPaths: []SolutionPath{
			{LandmarkID: "landmark_0", Path: []Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}}},
		},
	}
}

// straightRunLevel is a 1x4 row: landmark, two straights, turnpike. Each
// straight is one quarter turn away from the solution.
func straightRunLevel() *Level {
	return &Level{
		ID:       "straight-run",
		Name:     "straight_run",
		GridSize: GridSize{Rows: 1, Cols: 4},
		Tiles: []Tile{
			{Row: 0, Col: 0, Shape: LandmarkShape, RoadType: Landmark, Rotation: 270, SolutionRotation: 270, LandmarkKind: Diner},
			{Row: 0, Col: 1, Shape: Straight, RoadType: LocalRoad, Rotatable: true, Rotation: 0, SolutionRotation: 90},
			{Row: 0, Col: 2, Shape: Straight, RoadType: LocalRoad, Rotatable: true, Rotation: 0, SolutionRotation: 90},
			{Row: 0, Col: 3, Shape: TurnpikeShape, RoadType: Turnpike},
		},
		SolutionPaths: []SolutionPath{
			{LandmarkID: "landmark_0", Path: []Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}}},
		},
	}
}

func mustGrid(level *Level) *Grid {
	g, err := GridFromLevel(level)
	if err != nil {
		panic(err)
	}
	return g
}
