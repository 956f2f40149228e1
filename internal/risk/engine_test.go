package risk

import (
	"testing"

	"github.com/osintlab/ecoprofiler/internal/model"
)

func makeAlerts(n int) []model.ForestAlert {
	alerts := make([]model.ForestAlert, n)
	for i := range alerts {
		alerts[i] = model.ForestAlert{
			Latitude:   0.7,
			Longitude:  101.3,
			Date:       "2026-01-15",
			Confidence: 0.8,
			AreaHa:     1.2,
			AlertType:  "GLAD-L",
		}
	}
	return alerts
}

func makeCompanies(total, sanctioned int) []model.Company {
	companies := make([]model.Company, total)
	for i := range companies {
		companies[i] = model.Company{Name: "Test Co", Industry: "agriculture"}
		if i < sanctioned {
			companies[i].Sanctioned = true
		}
	}
	return companies
}

func makePosts(negative, positive int) []model.SocialPost {
	var posts []model.SocialPost
	for i := 0; i < negative; i++ {
		posts = append(posts, model.SocialPost{ID: "n", Sentiment: -0.5})
	}
	for i := 0; i < positive; i++ {
		posts = append(posts, model.SocialPost{ID: "p", Sentiment: 0.3})
	}
	return posts
}

func makeIndustrial(n int) []model.Business {
	businesses := make([]model.Business, n)
	for i := range businesses {
		businesses[i] = model.Business{
			ID:   int64(i),
			Tags: map[string]string{"industrial": "mining"},
		}
	}
	return businesses
}

func TestEngine_Score_AllEmpty(t *testing.T) {
	engine := NewEngine()

	result := engine.Score(nil, nil, nil, nil)

	if result.Score != 0 {
		t.Errorf("expected score 0 for empty inputs, got %f", result.Score)
	}
	if result.Tier != model.TierLow {
		t.Errorf("expected LOW tier for empty inputs, got %s", result.Tier)
	}
	if len(result.Signals) != 4 {
		t.Errorf("expected 4 signals, got %d", len(result.Signals))
	}
}

func TestEngine_Score_EndToEndScenario(t *testing.T) {
	engine := NewEngine()

	// 3 alerts, 1 sanctioned company, 4 negative + 6 positive posts,
	// 2 industrial businesses.
	alerts := makeAlerts(3)
	companies := makeCompanies(1, 1)
	posts := makePosts(4, 6)
	businesses := makeIndustrial(2)

	result := engine.Score(alerts, companies, posts, businesses)

	// forest 3*2=6, corporate 1*15=15, social 0.4*20=8, industrial 2*2=4
	want := 6.0 + 15.0 + 8.0 + 4.0
	if result.Score != want {
		t.Errorf("expected score %f, got %f", want, result.Score)
	}
	if result.Tier != model.TierMedium {
		t.Errorf("expected MEDIUM tier for score %f, got %s", want, result.Tier)
	}
}

func TestEngine_Score_Clamped(t *testing.T) {
	engine := NewEngine()

	// Adversarial volumes: each component must cap, total must clamp.
	result := engine.Score(makeAlerts(10000), makeCompanies(10000, 10000), makePosts(10000, 0), makeIndustrial(10000))

	if result.Score != 100 {
		t.Errorf("expected clamped score 100, got %f", result.Score)
	}
	if result.Tier != model.TierCritical {
		t.Errorf("expected CRITICAL tier, got %s", result.Tier)
	}
}

func TestEngine_Score_MonotonicInAlerts(t *testing.T) {
	engine := NewEngine()

	prev := -1.0
	for n := 0; n <= 30; n += 5 {
		result := engine.Score(makeAlerts(n), nil, nil, nil)
		if result.Score < prev {
			t.Errorf("score decreased from %f to %f at %d alerts", prev, result.Score, n)
		}
		prev = result.Score
	}
}

func TestEngine_Score_MonotonicInSanctioned(t *testing.T) {
	engine := NewEngine()

	prev := -1.0
	for n := 0; n <= 5; n++ {
		result := engine.Score(nil, makeCompanies(10, n), nil, nil)
		if result.Score < prev {
			t.Errorf("score decreased from %f to %f at %d sanctioned", prev, result.Score, n)
		}
		prev = result.Score
	}
}

func TestEngine_Score_MonotonicInNegativeFraction(t *testing.T) {
	engine := NewEngine()

	prev := -1.0
	for neg := 0; neg <= 10; neg++ {
		result := engine.Score(nil, nil, makePosts(neg, 10-neg), nil)
		if result.Score < prev {
			t.Errorf("score decreased from %f to %f at %d negative posts", prev, result.Score, neg)
		}
		prev = result.Score
	}
}

func TestEngine_Score_ZeroPostsNoDivisionError(t *testing.T) {
	engine := NewEngine()

	result := engine.Score(makeAlerts(1), nil, []model.SocialPost{}, nil)

	// Social component must be exactly 0, leaving only the forest points.
	if result.Score != 2 {
		t.Errorf("expected score 2 with zero posts, got %f", result.Score)
	}
}

func TestTierForScore_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  model.Tier
	}{
		{0, model.TierLow},
		{20, model.TierLow},
		{21, model.TierMedium},
		{40, model.TierMedium},
		{41, model.TierHigh},
		{70, model.TierHigh},
		{71, model.TierCritical},
		{100, model.TierCritical},
	}

	for _, tc := range cases {
		if got := model.TierForScore(tc.score); got != tc.want {
			t.Errorf("TierForScore(%f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestEngine_Score_SignalsCarryFormulas(t *testing.T) {
	engine := NewEngine()

	result := engine.Score(makeAlerts(2), makeCompanies(1, 1), makePosts(1, 1), makeIndustrial(1))

	for _, sig := range result.Signals {
		if sig.Data == nil {
			t.Errorf("signal %s missing data", sig.Type)
			continue
		}
		if _, ok := sig.Data["score"]; !ok {
			t.Errorf("signal %s missing score data", sig.Type)
		}
	}
}
