package format

// Level selects the compression strategy for a frame. Levels are ordered
// by increasing compression ratio and, typically, decreasing speed. The
// numeric value is written verbatim into the frame header.
type Level uint8

const (
	LevelFastest  Level = 0 // LevelFastest favors raw throughput over ratio.
	LevelFast     Level = 1 // LevelFast trades a little speed for a better ratio.
	LevelDefault  Level = 2 // LevelDefault is the recommended general-purpose setting.
	LevelBalanced Level = 3 // LevelBalanced improves density at moderate cost.
	LevelCompact  Level = 4 // LevelCompact maximizes density for cold data.
)

func (l Level) String() string {
	switch l {
	case LevelFastest:
		return "Fastest"
	case LevelFast:
		return "Fast"
	case LevelDefault:
		return "Default"
	case LevelBalanced:
		return "Balanced"
	case LevelCompact:
		return "Compact"
	default:
		return "Unknown"
	}
}

// IsValid reports whether l is one of the five defined levels.
func (l Level) IsValid() bool {
	return l <= LevelCompact
}
