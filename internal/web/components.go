package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/feedbackflow/internal/models"
	"github.com/spacesedan/feedbackflow/internal/shell"
)

type bar struct {
	Label   models.SentimentLabel
	Count   int
	Percent int
}

type pageData struct {
	View        shell.View
	Bars        []bar
	Suggestions string
	CanGenerate bool
}

func newPageData(v shell.View) pageData {
	data := pageData{View: v}
	if v.Analysis != nil {
		data.Bars = chartBars(v.Analysis.Distribution)
		data.CanGenerate = v.State != shell.Generating
	}
	if v.Suggestions != "" {
		data.Suggestions = RenderMarkdown(string(v.Suggestions))
	}
	return data
}

// chartBars scales each count against the largest one.
func chartBars(dist []models.LabelCount) []bar {
	top := 0
	for _, lc := range dist {
		if lc.Count > top {
			top = lc.Count
		}
	}
	bars := make([]bar, 0, len(dist))
	for _, lc := range dist {
		pct := 0
		if top > 0 {
			pct = lc.Count * 100 / top
		}
		bars = append(bars, bar{Label: lc.Label, Count: lc.Count, Percent: pct})
	}
	return bars
}

// RenderMarkdown converts model output to HTML. Raw HTML in the input is
// dropped.
func RenderMarkdown(md string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})
	out := blackfriday.Run([]byte(md), blackfriday.WithRenderer(renderer))
	return string(out)
}

func barWidth(b bar) string {
	return "width: " + strconv.Itoa(b.Percent) + "%"
}

// markdownHTML writes already rendered HTML without escaping it. Only output
// of RenderMarkdown is passed here.
func markdownHTML(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

// Page renders the whole analyzer page for v.
func Page(v shell.View) templ.Component {
	return page(newPageData(v))
}
