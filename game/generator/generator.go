package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/rng"
	"github.com/wricardo/roadlink/logger"
)

// levelNamespace scopes the name-based IDs of generated levels
var levelNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/wricardo/roadlink/levels"))

// Stats summarizes one successful generation
type Stats struct {
	Seed          uint32 `json:"seed"`
	RoadTiles     int    `json:"road_tiles"`
	Upgraded      int    `json:"upgraded"`
	Scrambled     int    `json:"scrambled"`
	ShortestRoute int    `json:"shortest_route"`
	Draws         int64  `json:"draws"`
}

// Generate builds a solved layout from cfg, proves it, then scrambles it.
// The same config and seed always produce the same level.
func Generate(cfg Config) (*engine.Level, error) {
	level, _, err := GenerateWithStats(cfg)
	return level, err
}

// GenerateWithStats is Generate that also reports what was built
func GenerateWithStats(cfg Config) (*engine.Level, *Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Seed == nil {
		cfg = cfg.WithSeed(uint32(time.Now().UnixNano()))
	}
	seed := *cfg.Seed
	src := rng.New(seed)
	log := logger.With("seed", seed, "difficulty", cfg.Difficulty.String(),
		"rows", cfg.GridSize.Rows, "cols", cfg.GridSize.Cols, "landmarks", cfg.LandmarkCount)

	g := engine.NewGrid(cfg.GridSize.Rows, cfg.GridSize.Cols)

	hub := placeHub(cfg.GridSize, cfg.Difficulty, src)
	if err := g.Place(&engine.Tile{Row: hub.Row, Col: hub.Col, Shape: engine.TurnpikeShape, RoadType: engine.Turnpike}); err != nil {
		return nil, nil, err
	}

	sites, err := placeLandmarks(g, hub, cfg.LandmarkCount, src)
	if err != nil {
		log.Debug("landmark placement failed", "error", err)
		return nil, nil, err
	}
	for i, p := range sites {
		if err := g.Place(&engine.Tile{
			Row:          p.Row,
			Col:          p.Col,
			Shape:        engine.LandmarkShape,
			RoadType:     engine.Landmark,
			LandmarkKind: engine.LandmarkKinds[i%len(engine.LandmarkKinds)],
		}); err != nil {
			return nil, nil, err
		}
	}

	merged := make(map[engine.Position]int)
	routes := make([]route, 0, len(sites))
	shortest := -1
	for _, p := range sites {
		r, err := synthesizeRoute(g, p, hub, cfg.MinPathLength, merged)
		if err != nil {
			log.Debug("route synthesis failed", "landmark", p.String(), "error", err)
			return nil, nil, err
		}
		routes = append(routes, r)
		if shortest < 0 || r.intermediates() < shortest {
			shortest = r.intermediates()
		}
	}

	rs := resolve(g, routes, merged)
	if rs.mismatched > 0 {
		log.Debug("resolver left tiles without an exact rotation", "count", rs.mismatched)
	}

	if err := verifyGrid(g); err != nil {
		log.Debug("structural check failed", "error", err)
		return nil, nil, err
	}

	stats := &Stats{
		Seed:          seed,
		RoadTiles:     engine.CountRotatable(g.Snapshot()),
		Upgraded:      rs.upgraded,
		ShortestRoute: shortest,
	}
	stats.Scrambled = scramble(g, src)
	stats.Draws = src.Draws()

	level := buildLevel(cfg, seed, g, routes)
	log.Info("level generated", "id", level.ID, "road_tiles", stats.RoadTiles,
		"upgraded", stats.Upgraded, "scrambled", stats.Scrambled)
	return level, stats, nil
}

func buildLevel(cfg Config, seed uint32, g *engine.Grid, routes []route) *engine.Level {
	key := fmt.Sprintf("%dx%d/%d/%s/%d/%d", cfg.GridSize.Rows, cfg.GridSize.Cols,
		cfg.LandmarkCount, cfg.Difficulty, cfg.MinPathLength, seed)

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("%s-%dx%d-%d", cfg.Difficulty, cfg.GridSize.Rows, cfg.GridSize.Cols, seed)
	}

	level := &engine.Level{
		ID:   uuid.NewSHA1(levelNamespace, []byte(key)).String(),
		Name: name,
		Description: fmt.Sprintf("Generated %s level: connect %d landmark(s) to the turnpike on a %dx%d grid.",
			cfg.Difficulty, cfg.LandmarkCount, cfg.GridSize.Rows, cfg.GridSize.Cols),
		Difficulty: cfg.Difficulty.String(),
		Seed:       &seed,
		GridSize:   g.Size(),
		Tiles:      g.Snapshot(),
	}

	for i, r := range routes {
		level.SolutionPaths = append(level.SolutionPaths, engine.SolutionPath{
			LandmarkID: fmt.Sprintf("landmark_%d", i),
			Path:       append([]engine.Position(nil), r.cells...),
		})
	}
	return level
}
