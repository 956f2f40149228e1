package model

// SocialPost represents a social media post about the region, enriched
// with comments and sentiment by the social fetcher.
type SocialPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"selftext,omitempty"`
	Channel      string    `json:"subreddit,omitempty"` // subreddit or equivalent channel
	CreatedUTC   float64   `json:"created_utc,omitempty"`
	Score        int       `json:"score"`
	CommentCount int       `json:"num_comments"`
	UpvoteRatio  float64   `json:"upvote_ratio,omitempty"`
	URL          string    `json:"url,omitempty"`
	Author       string    `json:"author,omitempty"`
	Permalink    string    `json:"permalink,omitempty"`
	Sentiment    float64   `json:"sentiment"`    // polarity in [-1,1]
	Subjectivity float64   `json:"subjectivity"` // [0,1]
	TopComments  []Comment `json:"top_comments,omitempty"`
}

// Comment is a single post comment kept for enrichment.
type Comment struct {
	Body   string `json:"body"`
	Score  int    `json:"score"`
	Author string `json:"author,omitempty"`
}

// Sentiment bucket thresholds. A post is negative below -0.1, positive
// above 0.1, neutral in between.
const (
	NegativeSentiment = -0.1
	PositiveSentiment = 0.1
)

// Negative reports whether the post falls in the negative bucket.
func (p SocialPost) Negative() bool { return p.Sentiment < NegativeSentiment }

// Positive reports whether the post falls in the positive bucket.
func (p SocialPost) Positive() bool { return p.Sentiment > PositiveSentiment }
