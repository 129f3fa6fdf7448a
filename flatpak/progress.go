package flatpak

import (
	"time"

	"github.com/blackwell-systems/goflatpak/internal/convert"
	"github.com/blackwell-systems/goflatpak/internal/native"
)

// Progress is a snapshot of a running operation's progress, taken when the
// native side reported it.
type Progress struct {
	// Percent is 0 to 100.
	Percent          int
	Status           string
	IsEstimating     bool
	BytesTransferred uint64
	StartTime        time.Time
}

func snapshotProgress(lib native.Library, p native.Ptr) Progress {
	var pr Progress
	if n, err := convert.Int(lib.GetInt(p, native.ProgressGetProgress)); err == nil {
		pr.Percent = n
	}
	if s, err := convert.OptString(lib.GetString(p, native.ProgressGetStatus)); err == nil && s != nil {
		pr.Status = *s
	}
	pr.IsEstimating = lib.GetBool(p, native.ProgressGetIsEstimating)
	pr.BytesTransferred = lib.GetUint64(p, native.ProgressGetBytesTransferred)
	if us, err := convert.Int64(lib.GetUint64(p, native.ProgressGetStartTime)); err == nil && us > 0 {
		pr.StartTime = time.UnixMicro(us)
	}
	return pr
}
