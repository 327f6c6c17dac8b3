package scanner

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/narrative"
)

// BuildStoryboard plans a fixed-arc storyboard from a scanned page: hook,
// intro, up to three feature shots, then the call to action. Shots carry
// movement tags instead of shot archetypes, so the director runs them on the
// sequential path with click validation.
func BuildStoryboard(scan *Result, target float64) []narrative.TimedShot {
	var shots []narrative.TimedShot
	used := 0.0

	add := func(beat string, shot narrative.Shot, caption *narrative.Caption) {
		start := used
		end := used + shot.Duration
		startFrame := int(math.Round(start * config.LegacyCaptureFPS))
		endFrame := int(math.Round(end * config.LegacyCaptureFPS))
		shots = append(shots, narrative.TimedShot{
			ID:         len(shots) + 1,
			Beat:       beat,
			Shot:       shot,
			StartTime:  start,
			EndTime:    end,
			StartFrame: startFrame,
			EndFrame:   endFrame,
			FrameCount: endFrame - startFrame,
			Caption:    caption,
		})
		used = end
	}

	add("hook", narrative.Shot{
		Target:     scan.Hero.Selector,
		Duration:   3,
		CameraMove: "static",
	}, &narrative.Caption{Text: hookCaption(scan), Style: "headline", Position: "center"})

	intro := math.Min(math.Max(7, math.Floor(target*0.2)), 9)
	add("intro", narrative.Shot{
		Target:     scan.Hero.Selector,
		Duration:   intro,
		CameraMove: "slow_pan_down",
	}, &narrative.Caption{Text: introCaption(scan), Style: "feature", Position: "lower_third"})

	interactions := scan.Interactions
	if len(interactions) == 0 {
		interactions = []Interaction{
			{Selector: "body > section:nth-of-type(2)", Text: "Discover", Intent: "navigate"},
			{Selector: "footer", Text: "Contact", Intent: "navigate"},
		}
	}

	// Reserve 8s for the CTA; whatever remains splits across the features.
	featureCount := len(interactions)
	if featureCount > 3 {
		featureCount = 3
	}
	perFeature := math.Max(6, math.Floor((target-used-8)/float64(featureCount)))

	for _, in := range interactions[:featureCount] {
		beat := "feature"
		move := "zoom_to_action"
		interaction := "click"
		if in.Intent == "navigate" {
			beat = "discovery"
			move = "slow_pan_down"
			interaction = ""
		}
		add(beat, narrative.Shot{
			Target:      in.Selector,
			Duration:    perFeature,
			CameraMove:  move,
			Interaction: interaction,
		}, &narrative.Caption{Text: featureCaption(in), Style: "feature", Position: "lower_third"})
	}

	ctaTarget := "body"
	ctaText := "Try it for free"
	if scan.Hero.CTA != nil {
		ctaTarget = scan.Hero.CTA.Selector
		ctaText = ctaCaption(scan.Hero.CTA)
	}
	add("cta", narrative.Shot{
		Target:     ctaTarget,
		Duration:   math.Max(5, target-used),
		CameraMove: "zoom_to_cta",
	}, &narrative.Caption{Text: ctaText, Style: "cta", Position: "center"})

	return shots
}

var titleSuffix = regexp.MustCompile(`\s*[-|•].*`)

// hookCaption names the product, from the page title or the domain.
func hookCaption(scan *Result) string {
	if title := strings.TrimSpace(scan.Metadata.Title); title != "" && title != "Untitled" {
		return "Meet " + strings.TrimSpace(titleSuffix.ReplaceAllString(title, ""))
	}
	if u, err := url.Parse(scan.URL); err == nil && u.Hostname() != "" {
		host := strings.TrimPrefix(u.Hostname(), "www.")
		if name, _, ok := strings.Cut(host, "."); ok {
			return "Meet " + name
		}
		return "Meet " + host
	}
	return "Meet this product"
}

// introCaption prefers a short H1, then the meta description's first
// sentence.
func introCaption(scan *Result) string {
	if h1 := scan.Hero.H1; h1 != "" && len(h1) < 60 {
		return h1
	}
	if desc := scan.Metadata.Description; desc != "" && len(desc) < 80 {
		first, _, _ := strings.Cut(desc, ".")
		return first
	}
	return "The modern way to work"
}

// featureCaption cleans the clickable's own label into display copy.
func featureCaption(in Interaction) string {
	caption := in.Text
	for _, noise := range []string{"click", "Click", "here", "Here"} {
		caption = strings.ReplaceAll(caption, noise, "")
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return "Take a closer look"
	}
	caption = strings.ToUpper(caption[:1]) + caption[1:]
	if len(caption) > 40 {
		caption = caption[:37] + "..."
	}
	return caption
}

var ctaVerbs = regexp.MustCompile(`(?i)try|start|sign|get|create`)

func ctaCaption(cta *CTARef) string {
	text := strings.TrimSpace(cta.Text)
	if text != "" && ctaVerbs.MatchString(text) {
		return strings.ToUpper(text[:1]) + text[1:]
	}
	return "Try it free"
}
