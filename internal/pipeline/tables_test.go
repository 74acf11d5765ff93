package pipeline

import "testing"

func TestParseTables(t *testing.T) {
	html := `
<h2>CSA Week 3</h2>
<table>
  <tr><td></td><td>Lovage Soup</td><td>Beet Salad</td></tr>
  <tr><th>Kale (1 bunch)</th><td>x</td><td></td></tr>
</table>
<table></table>
<table>
  <tr><td></td><td>Lovage Soup</td></tr>
  <tr><th>Olive oil</th><td>x</td></tr>
</table>`

	doc, err := Parse(html)
	if err != nil {
		t.Fatal(err)
	}

	tables := doc.Tables()
	if len(tables) != 2 {
		t.Fatalf("len(tables)=%d, want 2 (zero-row table discarded)", len(tables))
	}

	header, ok := tables[0].HeaderRow()
	if !ok || len(header) != 3 {
		t.Fatalf("bad header row: %+v", header)
	}
	if header[1].Text != "Lovage Soup" || header[1].Label {
		t.Fatalf("header cell = %+v", header[1])
	}

	label := tables[0].Rows[1][0]
	if !label.Label || label.Text != "Kale (1 bunch)" {
		t.Fatalf("label cell = %+v", label)
	}
}

func TestDocumentIntro(t *testing.T) {
	html := `
<p>Hello folks.</p>
<h2>Welcome to Week 3!</h2>
<table><tr><td>a</td></tr></table>`
	doc, err := Parse(html)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Intro(); got != "Welcome to Week 3!" {
		t.Fatalf("Intro() = %q", got)
	}
}

func TestDocumentIntroParagraphFallback(t *testing.T) {
	html := `
<h2>Our Farm</h2>
<p>The shares are ready.</p>
<table><tr><td>a</td></tr></table>`
	doc, err := Parse(html)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Intro(); got != "The shares are ready." {
		t.Fatalf("Intro() = %q", got)
	}
}

func TestDocumentRecipeImageSources(t *testing.T) {
	html := `
<img src="/sites/default/files/inline-images/2017-csa-week-1-share.jpg">
<img src="/sites/default/files/inline-images/lovage-soup.jpg">
<img src="https://front9farm.com/sites/default/files/inline-images/beet-salad.jpg">
<img src="https://cdn.elsewhere.test/banner.jpg">
<img src="/themes/custom/logo.png">
<img src="/sites/default/files/inline-images/lovage-soup.jpg">`
	doc, err := Parse(html)
	if err != nil {
		t.Fatal(err)
	}

	got := doc.RecipeImageSources("https://front9farm.com")
	want := []string{
		"/sites/default/files/inline-images/lovage-soup.jpg",
		"/sites/default/files/inline-images/beet-salad.jpg",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%q want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentInstructions(t *testing.T) {
	html := `
<h3>Lovage Soup</h3>
<p>Chop the lovage.</p>
<p>Simmer for an hour.</p>
<h3>Beet Salad</h3>
<p>Roast the beets.</p>`
	doc, err := Parse(html)
	if err != nil {
		t.Fatal(err)
	}

	steps := doc.Instructions("Lovage Soup")
	if len(steps) != 2 || steps[0] != "Chop the lovage." || steps[1] != "Simmer for an hour." {
		t.Fatalf("Instructions = %v", steps)
	}

	if steps := doc.Instructions("Carrot Cake"); steps != nil {
		t.Fatalf("expected nil for missing recipe, got %v", steps)
	}
}
