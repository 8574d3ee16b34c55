package sftp

import "sync"

// TransferState is the lifecycle of a running batch transfer.
type TransferState int

const (
	TransferRunning TransferState = iota
	TransferDone
	TransferFailed
)

// ProgressSnapshot is one consistent read of a transfer's progress.
type ProgressSnapshot struct {
	State       TransferState
	Message     string // failure message when State == TransferFailed
	CurrentFile string
	BytesDone   int64
	BytesTotal  int64
	FilesDone   int
	FilesTotal  int
}

// FileFraction returns the 0..1 progress of the current file, or 0 when
// the total is unknown (indeterminate, never a divide-by-zero).
func (s ProgressSnapshot) FileFraction() float64 {
	if s.BytesTotal <= 0 {
		return 0
	}
	return clamp01(float64(s.BytesDone) / float64(s.BytesTotal))
}

// OverallFraction returns the 0..1 progress by file count.
func (s ProgressSnapshot) OverallFraction() float64 {
	if s.FilesTotal <= 0 {
		return 1
	}
	return clamp01(float64(s.FilesDone) / float64(s.FilesTotal))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Progress is the shared progress record for one batch transfer. The
// worker goroutine is the only writer; the UI tick reads it via Snapshot.
// Terminal states (Done, Failed) are write-once.
type Progress struct {
	mu   sync.Mutex
	snap ProgressSnapshot
}

// NewProgress creates a running progress record. filesTotal may be a
// placeholder; the worker corrects it once it has counted.
func NewProgress(filesTotal int) *Progress {
	return &Progress{
		snap: ProgressSnapshot{State: TransferRunning, FilesTotal: filesTotal},
	}
}

// Snapshot returns a copy of the current progress.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Failed reports whether the transfer has entered the failed state.
func (p *Progress) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.State == TransferFailed
}

// SetFilesTotal corrects the file count denominator after the upfront scan.
func (p *Progress) SetFilesTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.FilesTotal = n
}

// StartFile records that a new file transfer begins.
func (p *Progress) StartFile(name string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.CurrentFile = name
	p.snap.BytesDone = 0
	p.snap.BytesTotal = total
}

// AddBytes advances the byte counter for the current file. When the total
// is known the counter never exceeds it.
func (p *Progress) AddBytes(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.BytesDone += n
	if p.snap.BytesTotal > 0 && p.snap.BytesDone > p.snap.BytesTotal {
		p.snap.BytesDone = p.snap.BytesTotal
	}
}

// FinishFile increments the completed-file counter.
func (p *Progress) FinishFile() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.FilesDone++
}

// Fail moves the transfer into the failed terminal state. The first
// failure wins; later calls are ignored.
func (p *Progress) Fail(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.State != TransferRunning {
		return
	}
	p.snap.State = TransferFailed
	p.snap.Message = msg
}

// Done moves the transfer into the done terminal state. It never
// downgrades an already-failed transfer.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.State != TransferRunning {
		return
	}
	p.snap.State = TransferDone
}
