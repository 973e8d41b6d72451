package interaction

// Config holds the gesture tuning constants, in world units unless noted.
type Config struct {
	GridSize      float64
	MinSize       float64
	DragThreshold float64
	// SnapDistance is the screen distance within which Ctrl-drag snaps
	// to another layer's edge or center.
	SnapDistance float64

	ZoomMin, ZoomMax float64
	ZoomStep         float64

	// HandleRadius and RotationHandleOffset are in screen pixels.
	HandleRadius         float64
	RotationHandleOffset float64

	RotateSnap      float64
	WheelRotateStep float64
	NudgeStep       float64
	NudgeStepLarge  float64
}

// DefaultConfig returns the standard editor tuning.
func DefaultConfig() Config {
	return Config{
		GridSize:             64,
		MinSize:              10,
		DragThreshold:        3,
		SnapDistance:         10,
		ZoomMin:              0.1,
		ZoomMax:              10,
		ZoomStep:             1.1,
		HandleRadius:         8,
		RotationHandleOffset: 20,
		RotateSnap:           15,
		WheelRotateStep:      5,
		NudgeStep:            1,
		NudgeStepLarge:       10,
	}
}
