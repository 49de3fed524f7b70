package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CountRoadType counts the tiles of a specific road type
func CountRoadType(tiles []Tile, rt RoadType) int {
	count := 0
	for _, t := range tiles {
		if t.RoadType == rt {
			count++
		}
	}
	return count
}

// CountShape counts the tiles of a specific shape
func CountShape(tiles []Tile, shape TileShape) int {
	count := 0
	for _, t := range tiles {
		if t.Shape == shape {
			count++
		}
	}
	return count
}

// CountRotatable counts the tiles a player can turn
func CountRotatable(tiles []Tile) int {
	count := 0
	for _, t := range tiles {
		if t.Rotatable {
			count++
		}
	}
	return count
}

// CountUnsolved counts rotatable tiles whose openings differ from the solution
func CountUnsolved(tiles []Tile) int {
	count := 0
	for i := range tiles {
		if tiles[i].Rotatable && !tiles[i].IsSolved() {
			count++
		}
	}
	return count
}

// TurnsToSolve returns the fewest clockwise quarter turns that bring the
// tile's openings to the solved arrangement.
func TurnsToSolve(t *Tile) int {
	r := t.Rotation
	for turns := 0; turns < len(Rotations); turns++ {
		if t.Shape.BaseOpenings().Rotate(r) == t.SolvedOpenings() {
			return turns
		}
		r = r.Next()
	}
	return 0
}

// MinimumRotations is the fewest quarter turns that solve every rotatable
// tile from its current rotation.
func MinimumRotations(tiles []Tile) int {
	total := 0
	for i := range tiles {
		if tiles[i].Rotatable {
			total += TurnsToSolve(&tiles[i])
		}
	}
	return total
}
