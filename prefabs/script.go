package prefabs

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/trailtactics/trail"
)

var ErrScriptOutput = errors.New("prefabs: script must set points to an array of [x, y] pairs")

// ScriptWaypoints compiles a tengo trail shape. The script reads goal_x,
// goal_y and max_length and leaves its waypoints in points, each an [x, y]
// array relative to the trail origin. A script that fails at run time
// yields no waypoints.
func ScriptWaypoints(name string, src []byte, maxLength float64, logger *zap.Logger) (trail.WaypointFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	script := tengo.NewScript(src)
	_ = script.Add("goal_x", 0.0)
	_ = script.Add("goal_y", 0.0)
	_ = script.Add("max_length", maxLength)
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("prefabs: compile %s: %w", name, err)
	}
	if !compiled.IsDefined("points") {
		return nil, fmt.Errorf("%w: %s", ErrScriptOutput, name)
	}

	return func(goal cp.Vector) []cp.Vector {
		c := compiled.Clone()
		_ = c.Set("goal_x", goal.X)
		_ = c.Set("goal_y", goal.Y)
		if err := c.Run(); err != nil {
			logger.Warn("prefabs: waypoint script failed", zap.String("script", name), zap.Error(err))
			return nil
		}
		points, err := toPoints(c.Get("points").Array())
		if err != nil {
			logger.Warn("prefabs: waypoint script output", zap.String("script", name), zap.Error(err))
			return nil
		}
		return points
	}, nil
}

func toPoints(raw []any) ([]cp.Vector, error) {
	out := make([]cp.Vector, 0, len(raw))
	for i, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: element %d", ErrScriptOutput, i)
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if !okX || !okY {
			return nil, fmt.Errorf("%w: element %d", ErrScriptOutput, i)
		}
		out = append(out, cp.Vector{X: x, Y: y})
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
