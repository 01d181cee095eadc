package timecode

// TicksToFrames converts Premiere ticks to the nearest whole frame at fps.
// Integer-only: the whole-second part and the remainder are scaled separately
// so long timelines cannot overflow.
func TicksToFrames(ticks int64, fps int) int64 {
	if ticks < 0 {
		return -TicksToFrames(-ticks, fps)
	}
	rate := int64(fps)
	whole := ticks / TicksPerSecond
	rem := ticks % TicksPerSecond
	return whole*rate + (rem*rate+TicksPerSecond/2)/TicksPerSecond
}

// FramesToTicks is the inverse of TicksToFrames for frame-aligned positions.
func FramesToTicks(frames int64, fps int) int64 {
	if frames < 0 {
		return -FramesToTicks(-frames, fps)
	}
	rate := int64(fps)
	return (frames/rate)*TicksPerSecond + (frames%rate)*TicksPerSecond/rate
}
