package semantic

import "strings"

// Page types recognized by the narrative planner.
const (
	PageSaaSLanding   = "saas_landing"
	PageProduct       = "product"
	PagePricing       = "pricing"
	PageAbout         = "about"
	PageMarketingSite = "marketing_site"
)

// CTA is a call-to-action found on the page.
type CTA struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// Hero describes the top-of-page section.
type Hero struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTA         *CTA   `json:"cta,omitempty"`
	VisualType  string `json:"visualType"` // video, product, illustration, unknown
}

// ValueProp is one feature/benefit section.
type ValueProp struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HasIcon     bool   `json:"hasIcon"`
}

// PainPoint is a problem statement detected on the page.
type PainPoint struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// Testimonial is one customer quote.
type Testimonial struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Metric is a headline number ("10K+ users", "99.9% uptime").
type Metric struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SocialProof groups credibility signals.
type SocialProof struct {
	Testimonials []Testimonial `json:"testimonials"`
	Metrics      []Metric      `json:"metrics"`
	LogoCount    int           `json:"logoCount"`
}

// CTASet holds the page's calls to action by placement.
type CTASet struct {
	Primary *CTA `json:"primary,omitempty"`
	Footer  *CTA `json:"footer,omitempty"`
}

// Journey flags describe which funnel surfaces the page links to.
type Journey struct {
	HasDemo    bool `json:"hasDemo"`
	HasSignup  bool `json:"hasSignup"`
	HasPricing bool `json:"hasPricing"`
	HasLogin   bool `json:"hasLogin"`
}

// Snapshot is the structured observation of a page. It is produced once per
// job and consumed read-only by the planner.
type Snapshot struct {
	URL         string      `json:"url"`
	Hero        Hero        `json:"hero"`
	ValueProps  []ValueProp `json:"valueProps"`
	PainPoints  []PainPoint `json:"painPoints"`
	SocialProof SocialProof `json:"socialProof"`
	CTAs        CTASet      `json:"ctas"`
	Journey     Journey     `json:"journey"`
	PageType    string      `json:"pageType"`
}

// DetectPageType classifies a page from its URL and observed shape.
func DetectPageType(url string, s *Snapshot) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "product"):
		return PageProduct
	case strings.Contains(lower, "pricing"):
		return PagePricing
	case strings.Contains(lower, "about"):
		return PageAbout
	case len(s.ValueProps) > 2 && s.Hero.Headline != "":
		return PageSaaSLanding
	default:
		return PageMarketingSite
	}
}

// RelevanceScores ranks observed elements by marketing weight. Hero and CTA
// dominate; value props decay by position.
func RelevanceScores(s *Snapshot) map[string]int {
	scores := map[string]int{
		"hero":        100,
		"cta":         95,
		"socialProof": 75,
		"painPoints":  60,
	}
	for i := range s.ValueProps {
		scores["valueProp_"+string(rune('0'+i))] = 90 - i*10
	}
	return scores
}

// Narrative is the condensed story extracted from a snapshot, used for
// captions and logging.
type Narrative struct {
	Hook     string
	Problem  string
	Solution string
	Proof    string
	CTA      string
}

// GenerateNarrative condenses a snapshot into hook/problem/solution/proof/cta
// strings, with generic fallbacks where the page gave us nothing.
func GenerateNarrative(s *Snapshot) Narrative {
	n := Narrative{CTA: "Get Started Today"}

	n.Hook = s.Hero.Headline

	if len(s.PainPoints) > 0 {
		n.Problem = s.PainPoints[0].Text
	} else if len(s.ValueProps) > 0 {
		n.Problem = "Looking for " + strings.ToLower(s.ValueProps[0].Title) + "?"
	}

	if len(s.ValueProps) > 0 {
		titles := make([]string, 0, 3)
		for i, p := range s.ValueProps {
			if i == 3 {
				break
			}
			titles = append(titles, p.Title)
		}
		n.Solution = strings.Join(titles, ". ")
	}

	if len(s.SocialProof.Testimonials) > 0 {
		n.Proof = s.SocialProof.Testimonials[0].Text
	} else if len(s.SocialProof.Metrics) > 0 {
		n.Proof = "Join " + s.SocialProof.Metrics[0].Value + " satisfied users"
	}

	if s.CTAs.Primary != nil {
		n.CTA = s.CTAs.Primary.Text
	}
	return n
}
