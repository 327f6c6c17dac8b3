package semantic

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog/log"
)

// Observer produces a Snapshot from a live page. The pipeline depends on
// this interface so tests can inject canned snapshots.
type Observer interface {
	Observe(page *rod.Page, url string) (*Snapshot, error)
}

// PageObserver extracts marketing structure by evaluating JS in the page.
type PageObserver struct{}

// observeJS runs in the page and returns the raw snapshot as a JSON string.
// Extraction is deliberately aggressive: a page with no obvious hero or CTA
// still yields usable candidates for the planner's fallbacks.
const observeJS = `() => {
	const cleanText = (el) => el && el.textContent ? el.textContent.trim().replace(/\s+/g, ' ') : '';
	const isVisible = (el) => {
		if (!el) return false;
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		return rect.width > 0 && rect.height > 0 &&
			style.display !== 'none' && style.visibility !== 'hidden';
	};

	const hero = { headline: '', subheadline: '', cta: null, visualType: 'unknown' };
	const h1s = Array.from(document.querySelectorAll('h1')).filter(isVisible);
	if (h1s.length > 0) {
		const h1 = h1s[0];
		hero.headline = cleanText(h1);
		const parent = h1.parentElement;
		if (parent) {
			const sub = parent.querySelector('p, h2, h3');
			if (sub) hero.subheadline = cleanText(sub);
			const btn = parent.querySelector('a[class*="button"], button, a[class*="cta"]');
			if (btn && isVisible(btn)) {
				hero.cta = { text: cleanText(btn), action: btn.getAttribute('href') || 'click' };
			}
			if (parent.querySelector('video')) hero.visualType = 'video';
			else if (parent.querySelector('img[src*="screenshot"], img[src*="product"]')) hero.visualType = 'product';
			else if (parent.querySelector('canvas, svg')) hero.visualType = 'illustration';
		}
	}

	const valueProps = [];
	const sections = Array.from(document.querySelectorAll('section, div[class], article'));
	const candidates = sections.filter(s => {
		if (!isVisible(s)) return false;
		const h = s.offsetHeight;
		return s.querySelector('h1, h2, h3, h4') && s.querySelector('p, span, div') && h > 50 && h < 2000;
	}).slice(0, 10);
	for (const section of candidates) {
		const heading = section.querySelector('h1, h2, h3, h4');
		const desc = section.querySelector('p') || section.querySelector('span');
		if (heading && cleanText(heading).length > 3) {
			valueProps.push({
				title: cleanText(heading).substring(0, 80),
				description: desc ? cleanText(desc).substring(0, 150) : '',
				hasIcon: !!section.querySelector('svg, img, i[class*="icon"]'),
			});
		}
	}

	const painPoints = [];
	const problemWords = ['problem', 'challenge', 'pain', 'difficult', 'struggle', 'issue'];
	const problemSections = Array.from(document.querySelectorAll('section, div')).filter(s => {
		const text = cleanText(s).toLowerCase();
		return problemWords.some(w => text.includes(w)) && text.length < 500;
	}).slice(0, 3);
	for (const section of problemSections) {
		const heading = section.querySelector('h2, h3, strong');
		if (heading) painPoints.push({
			text: cleanText(heading),
			context: cleanText(section).substring(0, 200),
		});
	}

	const socialProof = { testimonials: [], metrics: [], logoCount: 0 };
	document.querySelectorAll('[class*="testimonial"], [class*="review"], [class*="quote"]').forEach((el, idx) => {
		if (idx >= 3 || !isVisible(el)) return;
		const text = cleanText(el);
		if (text.length > 20) {
			const author = el.querySelector('[class*="author"], [class*="name"], cite');
			socialProof.testimonials.push({ text: text.substring(0, 150), author: author ? cleanText(author) : 'Customer' });
		}
	});
	document.querySelectorAll('[class*="stat"], [class*="metric"], [class*="number"]').forEach((el, idx) => {
		if (idx >= 4 || !isVisible(el)) return;
		const text = cleanText(el);
		if (/\d+[KMB%+]/.test(text) || /\$\d+/.test(text)) {
			const near = el.closest('div, section');
			socialProof.metrics.push({ value: text, label: near ? cleanText(near).substring(0, 80) : '' });
		}
	});
	socialProof.logoCount = Array.from(
		document.querySelectorAll('img[alt*="logo" i], img[src*="logo" i], img[class*="logo"]')
	).slice(0, 6).filter(isVisible).length;

	const ctas = { primary: null, footer: null };
	const buttons = Array.from(document.querySelectorAll('a, button')).filter(isVisible);
	const strongWords = ['get started', 'sign up', 'try', 'explore', 'demo', 'buy', 'start', 'learn', 'watch', 'see', 'view', 'download'];
	const strong = buttons.filter(b => strongWords.some(w => b.textContent.toLowerCase().includes(w)));
	const pick = strong.length > 0 ? strong : buttons;
	if (pick.length > 0) {
		ctas.primary = { text: cleanText(pick[0]) || 'Click Here', action: pick[0].getAttribute('href') || 'action' };
	}
	const footer = document.querySelector('footer');
	if (footer) {
		const fbtn = footer.querySelector('a[class*="button"], button');
		if (fbtn && isVisible(fbtn)) {
			ctas.footer = { text: cleanText(fbtn), action: fbtn.getAttribute('href') || 'action' };
		}
	}

	const journey = {
		hasDemo: !!document.querySelector('[href*="demo"], [class*="demo"]'),
		hasSignup: !!document.querySelector('[href*="signup"], [href*="register"]'),
		hasPricing: !!document.querySelector('[href*="pricing"], [class*="pricing"]'),
		hasLogin: !!document.querySelector('[href*="login"], [href*="signin"]'),
	};

	return JSON.stringify({ hero, valueProps, painPoints, socialProof, ctas, journey });
}`

// Observe evaluates the extraction script and classifies the page type.
func (PageObserver) Observe(page *rod.Page, url string) (*Snapshot, error) {
	obj, err := page.Eval(observeJS)
	if err != nil {
		return nil, fmt.Errorf("semantic evaluation: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(obj.Value.Str()), &snap); err != nil {
		return nil, fmt.Errorf("semantic decode: %w", err)
	}

	snap.URL = url
	snap.PageType = DetectPageType(url, &snap)

	log.Debug().
		Str("pageType", snap.PageType).
		Int("valueProps", len(snap.ValueProps)).
		Int("testimonials", len(snap.SocialProof.Testimonials)).
		Bool("primaryCTA", snap.CTAs.Primary != nil).
		Msg("page observed")

	return &snap, nil
}
