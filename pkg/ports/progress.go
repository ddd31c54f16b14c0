package ports

// Progress reports completion of the sampling tasks of one video.
// Step may be called concurrently.
type Progress interface {
	Begin(label string, total int)
	Step()
	End()
}
