package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/spacesedan/feedbackflow/internal/ingest"
	"github.com/spacesedan/feedbackflow/internal/models"
)

type State int

const (
	Idle State = iota
	FileLoaded
	Analyzed
	Generating
	Done
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileLoaded:
		return "file_loaded"
	case Analyzed:
		return "analyzed"
	case Generating:
		return "generating"
	case Done:
		return "done"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNoAnalysis  = errors.New("upload a feedback file first")
	ErrStaleUpload = errors.New("the file was replaced by a newer upload")
	ErrBusy        = errors.New("suggestions are already being generated")
)

type Analyzer interface {
	Analyze(batch models.FeedbackBatch) models.Analysis
}

type SuggestionGenerator interface {
	Generate(ctx context.Context, batch models.FeedbackBatch) (models.SuggestionText, error)
}

type Notifier interface {
	Notify(ctx context.Context, text models.SuggestionText) (bool, error)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Kind    NoticeKind
	Message string
}

// View is a read-only snapshot of the session for rendering.
type View struct {
	State       State
	UploadID    string
	FileName    string
	Rows        int
	Analysis    *models.Analysis
	Suggestions models.SuggestionText
	Delivered   bool
	Notices     []Notice
}

// Session drives one interactive analysis cycle. It is not safe for
// concurrent use; callers serialize calls to its methods. A Job returned by
// Begin may run outside that serialization.
type Session struct {
	analyzer  Analyzer
	generator SuggestionGenerator
	notifier  Notifier

	state       State
	uploadID    string
	fileName    string
	batch       models.FeedbackBatch
	analysis    *models.Analysis
	suggestions models.SuggestionText
	delivered   bool
	notices     []Notice
}

func NewSession(analyzer Analyzer, generator SuggestionGenerator, notifier Notifier) *Session {
	return &Session{
		analyzer:  analyzer,
		generator: generator,
		notifier:  notifier,
		state:     Idle,
	}
}

func (s *Session) State() State {
	return s.state
}

// Upload replaces the current file and immediately analyzes it. Schema
// problems leave the session Errored with no analysis.
func (s *Session) Upload(name string, r io.Reader) error {
	if s.state == Generating {
		return ErrBusy
	}
	s.reset()
	s.fileName = name

	if err := ingest.CheckFilename(name); err != nil {
		return s.fail(err)
	}
	batch, err := ingest.ReadFeedback(r)
	if err != nil {
		return s.fail(err)
	}

	s.batch = batch
	s.uploadID = uuid.NewString()
	s.state = FileLoaded
	s.notices = append(s.notices, Notice{Kind: NoticeSuccess, Message: "File uploaded successfully!"})
	slog.Info("[Shell] File loaded",
		slog.String("upload_id", s.uploadID),
		slog.String("file", name),
		slog.Int("rows", len(batch)))

	analysis := s.analyzer.Analyze(batch)
	s.analysis = &analysis
	s.state = Analyzed
	return nil
}

// Generate asks for suggestions on the analyzed batch and posts them to the
// webhook. uploadID must match the current upload; empty skips the check.
func (s *Session) Generate(ctx context.Context, uploadID string) error {
	job, err := s.Begin(uploadID)
	if err != nil {
		return err
	}
	return s.Finish(job.Run(ctx))
}

// Job is one generation run. It holds everything the external calls need so
// it can run without touching the session.
type Job struct {
	UploadID string

	batch     models.FeedbackBatch
	generator SuggestionGenerator
	notifier  Notifier
}

// Outcome is what a Job produced. Suggestions may be set even when Err is,
// if delivery failed after generation succeeded.
type Outcome struct {
	UploadID    string
	Suggestions models.SuggestionText
	Delivered   bool
	Err         error
}

// Begin moves the session to Generating and hands back the job to run.
// Further uploads and generate requests get ErrBusy until Finish is called.
func (s *Session) Begin(uploadID string) (*Job, error) {
	if s.state == Generating {
		return nil, ErrBusy
	}
	if s.analysis == nil {
		return nil, ErrNoAnalysis
	}
	if uploadID != "" && uploadID != s.uploadID {
		return nil, ErrStaleUpload
	}

	s.state = Generating
	s.suggestions = ""
	s.delivered = false
	s.notices = []Notice{{Kind: NoticeInfo, Message: "Generating suggestions..."}}
	slog.Info("[Shell] Generating suggestions", slog.String("upload_id", s.uploadID))

	return &Job{
		UploadID:  s.uploadID,
		batch:     s.batch,
		generator: s.generator,
		notifier:  s.notifier,
	}, nil
}

// Run calls the generator and then the notifier. A panic in either is
// returned as the outcome's error.
func (j *Job) Run(ctx context.Context) (out Outcome) {
	out.UploadID = j.UploadID
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Shell] Generation panicked",
				slog.String("upload_id", j.UploadID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			out.Delivered = false
			out.Err = fmt.Errorf("suggestion generation panicked: %v", r)
		}
	}()

	text, err := j.generator.Generate(ctx, j.batch)
	if err != nil {
		out.Err = err
		return out
	}
	out.Suggestions = text

	out.Delivered, out.Err = j.notifier.Notify(ctx, text)
	return out
}

// Finish records the outcome of the job started by Begin and returns its
// error. An outcome for anything but the running job is ignored.
func (s *Session) Finish(out Outcome) error {
	if s.state != Generating || out.UploadID != s.uploadID {
		slog.Warn("[Shell] Dropping outcome for a job that is not running",
			slog.String("upload_id", out.UploadID))
		return out.Err
	}

	s.notices = nil
	s.suggestions = out.Suggestions
	if out.Err != nil {
		return s.fail(out.Err)
	}
	s.delivered = out.Delivered
	if out.Delivered {
		s.notices = append(s.notices, Notice{Kind: NoticeSuccess, Message: "Sent to Slack!"})
	} else {
		s.notices = append(s.notices, Notice{Kind: NoticeError, Message: "Slack sending failed."})
	}
	s.state = Done
	return nil
}

func (s *Session) View() View {
	return View{
		State:       s.state,
		UploadID:    s.uploadID,
		FileName:    s.fileName,
		Rows:        len(s.batch),
		Analysis:    s.analysis,
		Suggestions: s.suggestions,
		Delivered:   s.delivered,
		Notices:     append([]Notice(nil), s.notices...),
	}
}

func (s *Session) reset() {
	s.state = Idle
	s.uploadID = ""
	s.fileName = ""
	s.batch = nil
	s.analysis = nil
	s.suggestions = ""
	s.delivered = false
	s.notices = nil
}

func (s *Session) fail(err error) error {
	slog.Error("[Shell] Action failed",
		slog.String("state", s.state.String()),
		slog.String("error", err.Error()))
	s.state = Errored
	s.notices = append(s.notices, Notice{Kind: NoticeError, Message: "Error: " + err.Error()})
	return err
}
