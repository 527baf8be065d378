package computer

import "fmt"

// ScalingTarget is a resolution screenshots are scaled down to before being
// sent to the remote service. Scaling on our side keeps the mapping between
// the service's coordinate space and the real screen exact, instead of
// letting the service resize images and guess. Targets stay under the
// service's maximum image dimensions for their aspect ratio.
type ScalingTarget struct {
	Name   string
	Width  int
	Height int
}

// Ratio is the target's aspect ratio.
func (t ScalingTarget) Ratio() float64 {
	return float64(t.Width) / float64(t.Height)
}

// ScalingTargets lists supported display shapes, best match wins.
var ScalingTargets = []ScalingTarget{
	{Name: "1:1", Width: 1024, Height: 1024},
	{Name: "XGA", Width: 1024, Height: 768},
	{Name: "3:2", Width: 1024, Height: 682},
	{Name: "WXGA", Width: 1280, Height: 800},
	{Name: "FWXGA", Width: 1366, Height: 768},
	{Name: "2:1", Width: 1280, Height: 640},
}

// MatchTarget picks the scaling target whose aspect ratio matches a display
// of the given dimensions, or nil when none matches or the display is
// already smaller than the target.
func MatchTarget(width, height int) *ScalingTarget {
	if width <= 0 || height <= 0 {
		return nil
	}
	ratio := float64(width) / float64(height)
	for _, target := range ScalingTargets {
		if abs(target.Ratio()-ratio) < 0.02 {
			if target.Width < width {
				t := target
				return &t
			}
			return nil
		}
	}
	return nil
}

// ScalerFor builds the scaler for a display of the given size. Displays
// larger than their matched target get that target as the service-facing
// space; everything else maps 1:1.
func ScalerFor(width, height int) Scaler {
	return Scaler{Target: MatchTarget(width, height), Width: width, Height: height}
}

// Source says which coordinate space a pair of coordinates came from.
type Source string

const (
	// SourceAPI marks coordinates from the remote service, scaled up to
	// screen space.
	SourceAPI Source = "api"
	// SourceScreen marks physical screen coordinates, scaled down to the
	// service's space.
	SourceScreen Source = "screen"
)

// Scaler maps coordinates between the service's space and the physical
// display. A nil target means the display is used at native resolution and
// mapping is the identity.
type Scaler struct {
	Target *ScalingTarget
	Width  int
	Height int
}

// Scale converts (x, y) from the given source space. Coordinates from the
// service are bounds-checked against the target space first; a point the
// service cannot have seen in any screenshot is an argument error, not a
// clamp. Linear scaling is exact regardless of the resampling filter used on
// pixels: a point at 50% width maps to 50% width in either space.
func (s Scaler) Scale(source Source, x, y int) (int, int, error) {
	if source == SourceAPI {
		maxX, maxY := s.Width, s.Height
		if s.Target != nil {
			maxX, maxY = s.Target.Width, s.Target.Height
		}
		if x < 0 || y < 0 || x > maxX || y > maxY {
			return 0, 0, fmt.Errorf("coordinates (%d, %d) are out of bounds (max %dx%d)", x, y, maxX, maxY)
		}
	}

	if s.Target == nil {
		return x, y, nil
	}

	xScale := float64(s.Target.Width) / float64(s.Width)
	yScale := float64(s.Target.Height) / float64(s.Height)

	if source == SourceAPI {
		return round(float64(x) / xScale), round(float64(y) / yScale), nil
	}
	return round(float64(x) * xScale), round(float64(y) * yScale), nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
