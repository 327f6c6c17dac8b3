// Package scanner extracts a coarse page structure when semantic observation
// is unavailable, and plans a movement-tag storyboard from it. It is the
// middle rung between the narrative pipeline and basic capture.
package scanner

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog/log"

	"github.com/Ansarii/autopromo-video/internal/browser"
)

// CTARef is a call-to-action element found on the page.
type CTARef struct {
	Text     string `json:"text"`
	Selector string `json:"selector"`
}

// Hero is the above-the-fold anchor of the page.
type Hero struct {
	H1       string  `json:"h1"`
	CTA      *CTARef `json:"cta"`
	Selector string  `json:"selector"`
}

// Scene is one content section worth showing.
type Scene struct {
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Selector string  `json:"selector"`
	Duration float64 `json:"duration"`
}

// Interaction is a scored clickable element.
type Interaction struct {
	Text     string  `json:"text"`
	Selector string  `json:"selector"`
	Intent   string  `json:"intent"`
	Score    float64 `json:"score"`
}

// Result is the scanned page structure the storyboard builder consumes.
type Result struct {
	URL          string
	Hero         Hero
	Scenes       []Scene
	Interactions []Interaction
	Metadata     browser.Metadata
}

// scanJS extracts hero, sections and scored clickables in one evaluation.
// Selectors prefer ids, then stable attributes, then a single semantic class,
// falling back to tag position.
const scanJS = `() => {
	const safeSelector = (el, idx) => {
		if (!el) return 'body';
		if (el.id) return '#' + el.id;
		const name = el.getAttribute('name');
		if (name) return '[name="' + name + '"]';
		const aria = el.getAttribute('aria-label');
		if (aria) return '[aria-label="' + aria + '"]';
		const cls = el.className && typeof el.className === 'string'
			? el.className.split(' ').find(c => c.length > 2 && !c.includes('active') && !c.includes('hover'))
			: null;
		if (cls) return '.' + cls;
		return el.tagName.toLowerCase() + ':nth-of-type(' + (idx + 1) + ')';
	};

	const h1 = document.querySelector('h1');
	const hero = { h1: h1 ? h1.textContent.trim() : '', cta: null, selector: 'body' };

	for (const sel of ['.hero', 'header', '[class*="hero"]', '[id*="hero"]', 'section:first-of-type']) {
		if (document.querySelector(sel)) { hero.selector = sel; break; }
	}

	const buttons = Array.from(document.querySelectorAll(
		'button, a[href*="signup"], a[href*="start"], a[href*="try"], .cta, [class*="cta"]'
	)).filter(btn => {
		const rect = btn.getBoundingClientRect();
		return rect.top >= 0 && rect.top < window.innerHeight && rect.width > 0;
	});
	if (buttons.length > 0) {
		buttons.sort((a, b) => {
			const ra = a.getBoundingClientRect(), rb = b.getBoundingClientRect();
			return rb.width * rb.height - ra.width * ra.height;
		});
		hero.cta = { text: buttons[0].textContent.trim(), selector: safeSelector(buttons[0], 0) };
	}

	const scenes = [];
	Array.from(document.querySelectorAll('h2, h3')).forEach((heading, idx) => {
		if (scenes.length >= 5) return;
		const text = heading.textContent.trim().toLowerCase();
		let type = 'content';
		if (text.includes('feature') || text.includes('how it works')) type = 'features';
		else if (text.includes('pricing') || text.includes('plan')) type = 'pricing';
		else if (text.includes('demo') || text.includes('example')) type = 'demo';
		else if (text.includes('about') || text.includes('story')) type = 'about';
		scenes.push({
			type,
			title: heading.textContent.trim(),
			selector: safeSelector(heading, idx),
			duration: type === 'features' ? 10 : 6,
		});
	});

	const interactions = [];
	Array.from(document.querySelectorAll(
		'button, a, [role="button"], [role="tab"], input[type="submit"]'
	)).forEach((el, idx) => {
		const rect = el.getBoundingClientRect();
		const text = el.textContent.trim().toLowerCase();
		if (rect.width <= 0 || rect.height <= 0 || rect.top < 0 || text.length < 2) return;

		let score = 0.5;
		if (text.includes('demo') || text.includes('try')) score += 0.3;
		if (text.includes('start') || text.includes('signup')) score += 0.25;

		let intent = 'navigate';
		if (text.includes('demo') || text.includes('example')) intent = 'show_demo';
		else if (text.includes('start') || text.includes('signup')) intent = 'signup';

		interactions.push({
			text,
			selector: safeSelector(el, idx),
			intent,
			score: Math.min(score, 1.0),
		});
	});
	interactions.sort((a, b) => b.score - a.score);

	return JSON.stringify({ hero, scenes, interactions: interactions.slice(0, 10) });
}`

// Scan evaluates the extraction script and attaches page metadata.
func Scan(page *rod.Page, url string) (*Result, error) {
	obj, err := page.Eval(scanJS)
	if err != nil {
		return nil, fmt.Errorf("page scan: %w", err)
	}

	var res Result
	if err := json.Unmarshal([]byte(obj.Value.Str()), &res); err != nil {
		return nil, fmt.Errorf("scan decode: %w", err)
	}
	res.URL = url

	md, err := browser.ExtractMetadata(page)
	if err != nil {
		log.Warn().Err(err).Msg("metadata extraction failed during scan")
		md = browser.Metadata{Title: "Untitled"}
	}
	res.Metadata = md

	log.Debug().
		Int("scenes", len(res.Scenes)).
		Int("interactions", len(res.Interactions)).
		Bool("heroCTA", res.Hero.CTA != nil).
		Msg("page scanned")
	return &res, nil
}
