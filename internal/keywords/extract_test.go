package keywords

import (
	"fmt"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/spacesedan/feedbackflow/internal/models"
)

func TestExtract_CountsAndTies(t *testing.T) {
	t.Parallel()

	batch := models.FeedbackBatch{
		"Checkout crashes on login",
		"login page crashes again",
		"love the design",
	}
	got := Top(batch)
	want := []models.KeywordCount{
		{Word: "crashes", Count: 2},
		{Word: "login", Count: 2},
		{Word: "checkout", Count: 1},
		{Word: "page", Count: 1},
		{Word: "again", Count: 1},
		{Word: "love", Count: 1},
		{Word: "design", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v\nwant=%v", got, want)
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	t.Parallel()

	lower := Top(models.FeedbackBatch{"great support team", "support was great"})
	mixed := Top(models.FeedbackBatch{"GREAT Support team", "SUPPORT was Great"})
	if !reflect.DeepEqual(lower, mixed) {
		t.Fatalf("lower=%v mixed=%v", lower, mixed)
	}
}

func TestExtract_DropsShortTokens(t *testing.T) {
	t.Parallel()

	got := Top(models.FeedbackBatch{"the app is ok but slow, ünï día mañana"})
	for _, kc := range got {
		if utf8.RuneCountInString(kc.Word) <= 3 {
			t.Fatalf("short token returned: %q", kc.Word)
		}
	}
	// Length is counted in characters, so "ünï" is dropped and "mañana" kept.
	want := []models.KeywordCount{{Word: "slow,", Count: 1}, {Word: "mañana", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v", got)
	}
}

func TestExtract_LimitAndOrder(t *testing.T) {
	t.Parallel()

	var batch models.FeedbackBatch
	for i := 0; i < 15; i++ {
		for j := 0; j <= i; j++ {
			batch = append(batch, fmt.Sprintf("word%02d", i))
		}
	}
	got := Top(batch)
	if len(got) != TOP_KEYWORDS {
		t.Fatalf("len=%d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("not sorted at %d: %v", i, got)
		}
	}
	if got[0].Word != "word14" || got[0].Count != 15 {
		t.Fatalf("first=%v", got[0])
	}
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	if got := Top(nil); len(got) != 0 {
		t.Fatalf("got=%v", got)
	}
}
