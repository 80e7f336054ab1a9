package download

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// emitter forwards events to an optional callback.
type emitter func(ProgressEvent)

func (e emitter) emit(level ProgressLevel, message string) {
	if e != nil {
		e(ProgressEvent{Message: message, Level: level})
	}
}
