package rank

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/match"
)

func makeItem(id int64, title, location string, categories, colors []string) item.Item {
	return item.Reconstruct(
		id, item.Lost, title, "some details", location, "",
		categories, colors, nil, nil, time.Unix(0, 0),
	)
}

func TestRank_MatchTypeSelection(t *testing.T) {
	r := New(nil)
	c := []match.Candidate{{Item: makeItem(1, "Backpack", "Library", nil, nil)}}

	cases := []struct {
		name     string
		query    string
		hasImage bool
		want     match.Type
	}{
		{"text only", "black backpack", false, match.Text},
		{"image only", "", true, match.Image},
		{"both", "black backpack", true, match.Combined},
		{"whitespace query counts as absent", "   ", true, match.Image},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results := r.Rank(c, tc.query, tc.hasImage)
			if results[0].Type != tc.want {
				t.Errorf("match type = %s, want %s", results[0].Type, tc.want)
			}
		})
	}
}

func TestRank_CombinedWeights(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		{Item: makeItem(1, "Backpack", "Gym", nil, nil), TextSimilarity: 0.5, ImageSimilarity: 1.0},
	}

	results := r.Rank(candidates, "query", true)
	want := 0.6*0.5 + 0.4*1.0
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("combined score = %f, want %f", results[0].Score, want)
	}
}

func TestRank_CategoryBonusOrdersResults(t *testing.T) {
	r := New(nil)
	tagged := makeItem(1, "Backpack", "Gym", []string{"backpack"}, nil)
	plain := makeItem(2, "Backpack", "Gym", nil, nil)

	candidates := []match.Candidate{
		{Item: plain, TextSimilarity: 0.5},
		{Item: tagged, TextSimilarity: 0.5},
	}

	results := r.Rank(candidates, "black backpack", false)
	if results[0].Item.ID() != 1 {
		t.Fatalf("expected tagged item first, got item %d", results[0].Item.ID())
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("tagged score %f should be strictly above plain score %f",
			results[0].Score, results[1].Score)
	}
	if math.Abs(results[0].Score-0.6) > 1e-9 {
		t.Errorf("expected 0.5 + 0.1 bonus = 0.6, got %f", results[0].Score)
	}
}

func TestRank_ColorBonus(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		{Item: makeItem(1, "Backpack", "Gym", nil, []string{"black"}), TextSimilarity: 0.5},
	}

	results := r.Rank(candidates, "black backpack", false)
	if math.Abs(results[0].Score-0.55) > 1e-9 {
		t.Errorf("expected 0.5 + 0.05 color bonus = 0.55, got %f", results[0].Score)
	}
}

func TestRank_ScoreAndConfidenceBounds(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		// Bonus would push past 1.0 without clamping.
		{Item: makeItem(1, "Backpack", "Gym", []string{"backpack", "bag"}, []string{"black"}),
			TextSimilarity: 0.95, ImageSimilarity: 0.99},
		{Item: makeItem(2, "Phone", "Library", nil, nil), TextSimilarity: 0.1},
	}

	results := r.Rank(candidates, "black backpack bag", true)
	for _, res := range results {
		if res.Score < 0 || res.Score > 1 {
			t.Errorf("score %f out of [0,1]", res.Score)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("confidence %f out of [0,1]", res.Confidence)
		}
	}
	if results[0].Score != 1.0 {
		t.Errorf("expected clamped score 1.0, got %f", results[0].Score)
	}
}

func TestRank_ConfidenceMultipliers(t *testing.T) {
	r := New(nil)
	it := makeItem(1, "Backpack", "Gym", nil, nil)

	t.Run("text", func(t *testing.T) {
		results := r.Rank([]match.Candidate{{Item: it, TextSimilarity: 0.5}}, "q", false)
		if math.Abs(results[0].Confidence-0.5) > 1e-9 {
			t.Errorf("text confidence = %f, want 0.5", results[0].Confidence)
		}
	})
	t.Run("image discounted", func(t *testing.T) {
		results := r.Rank([]match.Candidate{{Item: it, ImageSimilarity: 0.5}}, "", true)
		if math.Abs(results[0].Confidence-0.4) > 1e-9 {
			t.Errorf("image confidence = %f, want 0.4", results[0].Confidence)
		}
	})
	t.Run("combined boosted", func(t *testing.T) {
		results := r.Rank([]match.Candidate{
			{Item: it, TextSimilarity: 0.5, ImageSimilarity: 0.5},
		}, "q", true)
		if math.Abs(results[0].Confidence-0.6) > 1e-9 {
			t.Errorf("combined confidence = %f, want 0.6", results[0].Confidence)
		}
	})
}

func TestRank_SortedDescendingStable(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		{Item: makeItem(1, "A", "X", nil, nil), TextSimilarity: 0.3},
		{Item: makeItem(2, "B", "X", nil, nil), TextSimilarity: 0.9},
		{Item: makeItem(3, "C", "X", nil, nil), TextSimilarity: 0.3},
		{Item: makeItem(4, "D", "X", nil, nil), TextSimilarity: 0.7},
	}

	results := r.Rank(candidates, "query", false)
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("not sorted descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}

	// Ties keep input order: item 1 before item 3.
	if results[2].Item.ID() != 1 || results[3].Item.ID() != 3 {
		t.Errorf("tie order broken: got %d, %d", results[2].Item.ID(), results[3].Item.ID())
	}
}

func TestRank_DegenerateSignalZeroScored(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		{Item: makeItem(1, "A", "X", nil, nil), TextSimilarity: math.NaN()},
		{Item: makeItem(2, "B", "X", nil, nil), TextSimilarity: 0.5},
	}

	results := r.Rank(candidates, "query", false)
	if len(results) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(results))
	}
	if results[0].Item.ID() != 2 {
		t.Errorf("healthy candidate should rank first")
	}
	if results[1].Score != 0 || results[1].Confidence != 0 {
		t.Errorf("degenerate candidate should zero-score, got %f/%f",
			results[1].Score, results[1].Confidence)
	}
}

func TestRank_Idempotent(t *testing.T) {
	r := New(nil)
	candidates := []match.Candidate{
		{Item: makeItem(1, "Backpack", "Gym", []string{"backpack"}, []string{"black"}), TextSimilarity: 0.4},
		{Item: makeItem(2, "Phone", "Library", nil, nil), TextSimilarity: 0.8},
	}

	first := r.Rank(candidates, "black backpack", false)
	second := r.Rank(candidates, "black backpack", false)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different rankings")
	}
}

func TestMatchedFeatures(t *testing.T) {
	it := makeItem(1, "Backpack", "Gym", []string{"backpack"}, []string{"black"})

	t.Run("empty query", func(t *testing.T) {
		if got := MatchedFeatures(it, ""); got != nil {
			t.Errorf("expected nil for empty query, got %v", got)
		}
	})

	t.Run("field order is fixed", func(t *testing.T) {
		got := MatchedFeatures(it, "black Backpack near the gym")
		want := []string{"category: backpack", "color: black", "location: Gym", "title: Backpack"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("matched features:\ngot:  %v\nwant: %v", got, want)
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		got := MatchedFeatures(it, "BLACK BACKPACK")
		if len(got) != 3 {
			t.Errorf("expected category, color, and title hits, got %v", got)
		}
	})
}

func TestBonusAndExplanationAgree(t *testing.T) {
	// The bonus and the explanation must use the same containment rule:
	// a category bonus implies the category appears in MatchedFeatures.
	r := New(nil)
	it := makeItem(1, "Backpack", "Gym", []string{"Backpack"}, nil)
	query := "lost my backpack"

	results := r.Rank([]match.Candidate{{Item: it, TextSimilarity: 0.2}}, query, false)
	gotBonus := results[0].Score > 0.2
	gotFeature := false
	for _, f := range results[0].MatchedFeatures {
		if f == "category: Backpack" {
			gotFeature = true
		}
	}
	if gotBonus != gotFeature {
		t.Errorf("bonus (%v) and explanation (%v) diverged", gotBonus, gotFeature)
	}
}
