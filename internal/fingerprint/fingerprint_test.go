package fingerprint_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
)

func TestExtractSkeleton(t *testing.T) {
	e := fingerprint.NewExtractor()

	testCases := []struct {
		name   string
		markup string
		want   string
	}{
		{"empty", "", "empty"},
		{"text only", "just words", "empty"},
		{
			"roles",
			`<section class="hero"><h1>Title</h1><p>Body</p><button>Go</button></section>`,
			"section[section] h1[heading] p[body] button[button]",
		},
		{
			"self closing",
			`<div><img src="a.png" /><br><input type="text"/></div>`,
			"div img[media] br input",
		},
		{
			"comments stripped",
			`<div><!-- note --><span>x</span>{/* jsx note */}<nav></nav></div>`,
			"div span[body] nav[navigation]",
		},
		{
			"jsx components",
			`<Header><Main className="p-4" /></Header>`,
			"header[header] main[main]",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, e.ExtractSkeleton(tc.markup), tc.want)
		})
	}
}

func TestSkeletonIgnoresAttributes(t *testing.T) {
	e := fingerprint.NewExtractor()
	a := e.Fingerprint(`<div class="p-4 bg-red-500"><h2 id="a">Hello</h2></div>`)
	b := e.Fingerprint(`<div class="m-2"><h2>Completely different text</h2></div>`)
	gt.Equal(t, a, b)

	c := e.Fingerprint(`<div><h3>Hello</h3></div>`)
	gt.NotEqual(t, a.Hash, c.Hash)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	e := fingerprint.NewExtractor()
	code := `<main><section><h1>A</h1></section></main>`
	first := e.Fingerprint(code)
	for range 5 {
		gt.Equal(t, e.Fingerprint(code), first)
	}
	gt.Equal(t, len(first.Hash), 16)
	gt.Equal(t, e.Fingerprint("").Skeleton, "empty")
	gt.Equal(t, fingerprint.HashSkeleton("empty"), e.Fingerprint("").Hash)
}

func TestWithRoleExtendsTable(t *testing.T) {
	e := fingerprint.NewExtractor(
		fingerprint.WithRole("ul", "list"),
		fingerprint.WithRole("SPAN", ""),
	)
	gt.Equal(t, e.ExtractSkeleton(`<ul><li><span>x</span></li></ul>`), "ul[list] li span")

	role, ok := e.Role("h4")
	gt.True(t, ok)
	gt.Equal(t, role, "heading")

	// Defaults are not shared between extractors.
	gt.Equal(t, fingerprint.NewExtractor().ExtractSkeleton(`<span></span>`), "span[body]")
}

func TestHashContent(t *testing.T) {
	gt.Equal(t, fingerprint.HashContent("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	gt.Equal(t, fingerprint.HashSkeleton("abc"), "ba7816bf8f01cfea")
}

func TestTokens(t *testing.T) {
	gt.A(t, fingerprint.Tokens("empty")).Length(0)
	gt.Equal(t, fingerprint.Tokens("div p[body]"), []string{"div", "p[body]"})
}

func TestIsPromotable(t *testing.T) {
	th := fingerprint.DefaultThresholds
	base := model.CodePattern{Frequency: 5, AvgScore: 0.8}

	gt.True(t, th.IsPromotable(base))

	lowFreq := base
	lowFreq.Frequency = 1
	gt.False(t, th.IsPromotable(lowFreq))

	lowScore := base
	lowScore.AvgScore = 0.2
	gt.False(t, th.IsPromotable(lowScore))

	promoted := base
	promoted.Promoted = true
	gt.False(t, th.IsPromotable(promoted))

	atBoundary := model.CodePattern{Frequency: th.MinFrequency, AvgScore: th.MinAvgScore}
	gt.True(t, th.IsPromotable(atBoundary))

	custom := fingerprint.Thresholds{MinFrequency: 10, MinAvgScore: 0.9}
	gt.False(t, custom.IsPromotable(base))
}
