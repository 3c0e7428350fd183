package gamelog

import (
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/GreyHak/satisfactory-save-monitor/internal/logging"
)

// Kind is the type of a recognized FactoryGame.log line.
type Kind int

const (
	KindPlayerLogin Kind = iota + 1
	KindPlayerLogoff
	KindIntervalReconfigured
	KindSaveStarted
	KindSaveCompleted
)

func (k Kind) String() string {
	switch k {
	case KindPlayerLogin:
		return "player_login"
	case KindPlayerLogoff:
		return "player_logoff"
	case KindIntervalReconfigured:
		return "interval_reconfigured"
	case KindSaveStarted:
		return "save_started"
	case KindSaveCompleted:
		return "save_completed"
	default:
		return "unknown"
	}
}

// Event is one classified log line. Only the fields of its Kind are set.
type Event struct {
	Kind Kind
	Time time.Time

	Player             string
	NewIntervalSeconds float64
	ElapsedSeconds     float64
	TotalSeconds       float64
}

// InferredStart is when a save began: the line timestamp minus the time the
// engine had already spent saving. Other kinds return Time.
func (e Event) InferredStart() time.Time {
	if e.Kind != KindSaveStarted {
		return e.Time
	}
	return e.Time.Add(-secondsToDuration(e.ElapsedSeconds))
}

type Tailer struct {
	Path    string
	Fs      afero.Fs
	Offset  int64
	Pending []byte

	// identity is the last file seen at Path, used to spot a replacement
	// when the filesystem reports file identity.
	identity os.FileInfo
	rotated  bool
}

type SourceOptions struct {
	Path         string
	Fs           afero.Fs
	PollInterval time.Duration
	// Watch enables fsnotify wake-ups; requires Fs to be the OS filesystem.
	Watch bool
}

type Source struct {
	opts   SourceOptions
	logger *logging.Logger
	tailer *Tailer

	health     sourceHealth
	watching   bool
	lineCount  int64
	onRotation func()
}

type sourceHealth int

const (
	healthUnknown sourceHealth = iota
	healthTailing
	healthMissing
	healthUnreadable
)

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
