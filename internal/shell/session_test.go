package shell

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spacesedan/feedbackflow/internal/ingest"
	"github.com/spacesedan/feedbackflow/internal/models"
)

type fakeAnalyzer struct {
	calls int
}

func (f *fakeAnalyzer) Analyze(batch models.FeedbackBatch) models.Analysis {
	f.calls++
	return models.Analysis{Labels: make([]models.SentimentLabel, len(batch))}
}

type fakeGenerator struct {
	text  models.SuggestionText
	err   error
	calls int
	got   models.FeedbackBatch
}

func (f *fakeGenerator) Generate(_ context.Context, batch models.FeedbackBatch) (models.SuggestionText, error) {
	f.calls++
	f.got = batch
	return f.text, f.err
}

type fakeNotifier struct {
	ok    bool
	err   error
	calls int
}

func (f *fakeNotifier) Notify(context.Context, models.SuggestionText) (bool, error) {
	f.calls++
	return f.ok, f.err
}

const sampleCSV = "id,feedback\n1,Love it\n2,Too slow\n"

func lastNotice(v View) Notice {
	if len(v.Notices) == 0 {
		return Notice{}
	}
	return v.Notices[len(v.Notices)-1]
}

func TestUpload_AnalyzesImmediately(t *testing.T) {
	t.Parallel()

	a := &fakeAnalyzer{}
	s := NewSession(a, &fakeGenerator{}, &fakeNotifier{})
	if s.State() != Idle {
		t.Fatalf("initial state=%s", s.State())
	}
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	v := s.View()
	if v.State != Analyzed || a.calls != 1 {
		t.Fatalf("state=%s analyze calls=%d", v.State, a.calls)
	}
	if v.Rows != 2 || v.Analysis == nil || v.UploadID == "" {
		t.Fatalf("view=%+v", v)
	}
	if lastNotice(v).Kind != NoticeSuccess {
		t.Fatalf("notices=%v", v.Notices)
	}
}

func TestUpload_SchemaErrorSkipsAnalysis(t *testing.T) {
	t.Parallel()

	a := &fakeAnalyzer{}
	s := NewSession(a, &fakeGenerator{}, &fakeNotifier{})
	err := s.Upload("feedback.csv", strings.NewReader("comment\nhello\n"))
	if !errors.Is(err, ingest.ErrMissingColumn) {
		t.Fatalf("err=%v", err)
	}
	v := s.View()
	if v.State != Errored || v.Analysis != nil || a.calls != 0 {
		t.Fatalf("state=%s analysis=%v calls=%d", v.State, v.Analysis, a.calls)
	}
	if n := lastNotice(v); n.Kind != NoticeError || !strings.Contains(n.Message, "feedback") {
		t.Fatalf("notice=%+v", n)
	}
	if err := s.Generate(context.Background(), ""); !errors.Is(err, ErrNoAnalysis) {
		t.Fatalf("Generate after schema error: %v", err)
	}

	// a good upload recovers
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if s.State() != Analyzed {
		t.Fatalf("state=%s", s.State())
	}
}

func TestUpload_RejectsNonCSV(t *testing.T) {
	t.Parallel()

	s := NewSession(&fakeAnalyzer{}, &fakeGenerator{}, &fakeNotifier{})
	err := s.Upload("feedback.xlsx", strings.NewReader(sampleCSV))
	if !errors.Is(err, ingest.ErrUnsupportedFile) || s.State() != Errored {
		t.Fatalf("err=%v state=%s", err, s.State())
	}
}

func TestGenerate_Flows(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cases := []struct {
		name      string
		gen       *fakeGenerator
		notifier  *fakeNotifier
		wantState State
		wantErr   error
		wantText  models.SuggestionText
		notify    int
		notice    NoticeKind
	}{
		{"delivered", &fakeGenerator{text: "- idea"}, &fakeNotifier{ok: true}, Done, nil, "- idea", 1, NoticeSuccess},
		{"webhook rejected", &fakeGenerator{text: "- idea"}, &fakeNotifier{ok: false}, Done, nil, "- idea", 1, NoticeError},
		{"webhook transport error", &fakeGenerator{text: "- idea"}, &fakeNotifier{err: boom}, Errored, boom, "- idea", 1, NoticeError},
		{"generation error", &fakeGenerator{err: boom}, &fakeNotifier{ok: true}, Errored, boom, "", 0, NoticeError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewSession(&fakeAnalyzer{}, tc.gen, tc.notifier)
			if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
				t.Fatalf("Upload: %v", err)
			}
			err := s.Generate(context.Background(), s.View().UploadID)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v", err)
			}
			v := s.View()
			if v.State != tc.wantState {
				t.Fatalf("state=%s", v.State)
			}
			if v.Suggestions != tc.wantText {
				t.Fatalf("suggestions=%q", v.Suggestions)
			}
			if tc.notifier.calls != tc.notify {
				t.Fatalf("notify calls=%d", tc.notifier.calls)
			}
			if lastNotice(v).Kind != tc.notice {
				t.Fatalf("notices=%v", v.Notices)
			}
			if len(tc.gen.got) != 2 {
				t.Fatalf("generator got %d items", len(tc.gen.got))
			}
		})
	}
}

func TestGenerate_RetryAfterError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("temporary")}
	s := NewSession(&fakeAnalyzer{}, gen, &fakeNotifier{ok: true})
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Generate(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}
	gen.err = nil
	gen.text = "- retry worked"
	if err := s.Generate(context.Background(), ""); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.State() != Done || s.View().Suggestions != "- retry worked" || gen.calls != 2 {
		t.Fatalf("state=%s view=%+v calls=%d", s.State(), s.View(), gen.calls)
	}
}

func TestGenerate_StaleUpload(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "x"}
	s := NewSession(&fakeAnalyzer{}, gen, &fakeNotifier{ok: true})
	if err := s.Upload("a.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	first := s.View().UploadID
	if err := s.Upload("b.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Generate(context.Background(), first); !errors.Is(err, ErrStaleUpload) {
		t.Fatalf("err=%v", err)
	}
	if gen.calls != 0 || s.State() != Analyzed {
		t.Fatalf("calls=%d state=%s", gen.calls, s.State())
	}
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, models.FeedbackBatch) (models.SuggestionText, error) {
	panic("model client exploded")
}

func TestGenerate_PanicLeavesSessionUsable(t *testing.T) {
	t.Parallel()

	s := NewSession(&fakeAnalyzer{}, panickingGenerator{}, &fakeNotifier{ok: true})
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	err := s.Generate(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "model client exploded") {
		t.Fatalf("err=%v", err)
	}
	v := s.View()
	if v.State != Errored || lastNotice(v).Kind != NoticeError {
		t.Fatalf("state=%s notices=%v", v.State, v.Notices)
	}
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("upload after panic: %v", err)
	}
}

func TestBegin_BusyUntilFinish(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "- idea"}
	s := NewSession(&fakeAnalyzer{}, gen, &fakeNotifier{ok: true})
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	job, err := s.Begin(s.View().UploadID)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	v := s.View()
	if v.State != Generating || lastNotice(v).Kind != NoticeInfo {
		t.Fatalf("state=%s notices=%v", v.State, v.Notices)
	}
	if _, err := s.Begin(""); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Begin err=%v", err)
	}
	if err := s.Upload("other.csv", strings.NewReader(sampleCSV)); !errors.Is(err, ErrBusy) {
		t.Fatalf("Upload while generating err=%v", err)
	}

	if err := s.Finish(job.Run(context.Background())); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.State() != Done || s.View().Suggestions != "- idea" {
		t.Fatalf("state=%s view=%+v", s.State(), s.View())
	}
}

func TestFinish_IgnoresOutcomeOfOtherJob(t *testing.T) {
	t.Parallel()

	s := NewSession(&fakeAnalyzer{}, &fakeGenerator{text: "x"}, &fakeNotifier{ok: true})
	if err := s.Upload("feedback.csv", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	_ = s.Finish(Outcome{UploadID: "someone-else", Suggestions: "stale"})
	if s.State() != Analyzed || s.View().Suggestions != "" {
		t.Fatalf("state=%s view=%+v", s.State(), s.View())
	}
}
