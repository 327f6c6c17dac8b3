package cinema

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// selectorMap resolves semantic target names to real CSS selectors. Targets
// not in the map are assumed to already be selectors.
var selectorMap = map[string]string{
	"hero":            `section:first-of-type, header, [class*="hero"]`,
	"hero_headline":   "h1",
	"testimonials":    `[class*="testimonial"], [class*="review"]`,
	"stats":           `[class*="stat"], [class*="metric"]`,
	"footer":          "footer",
	"footer_or_logos": `footer, [class*="logo"]`,
	"logo":            `img[alt*="logo" i], [class*="logo"]`,
	"content":         "main, body",
	"features":        `section:nth-of-type(2), [class*="feature"]`,
	"problem_section": `section, [class*="problem"]`,
}

// ResolveTarget maps a semantic target to a CSS selector. The selector is
// returned even when nothing on the page matches; movement routines treat a
// missing element as "stay where you are".
func ResolveTarget(target string) string {
	sel, ok := selectorMap[target]
	if !ok {
		sel = target
	}
	return sel
}

// ExecuteCameraMove drives the in-page camera for one shot: scrolling,
// focusing and interacting while the director captures frames in parallel.
// Page-level failures degrade to a static hold; only context cancellation
// aborts the shot.
func ExecuteCameraMove(ctx context.Context, page *rod.Page, plan ExecutionPlan) error {
	duration := time.Duration(plan.Duration * float64(time.Second))

	var selector string
	if plan.Target.Selector != "" && plan.Target.Selector != "viewport" {
		selector = ResolveTarget(plan.Target.Selector)
	}

	if plan.Target.Highlight && selector != "" {
		HighlightElement(page, selector, plan.Effects.Glow)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		switch plan.Camera.Movement {
		case MoveScroll:
			return smoothScroll(ctx, page, duration, plan.Camera.ZoomEnd)
		case MoveZoom:
			return holdOnElement(ctx, page, selector, duration)
		case MovePan:
			return smoothPan(ctx, page, selector, duration)
		case MoveTrack, MoveOrbit:
			FocusElement(page, selector)
			return sleep(ctx, duration)
		case MoveStatic:
			FocusElement(page, selector)
			return sleep(ctx, duration)
		default:
			return sleep(ctx, duration)
		}
	})

	if plan.Target.Interaction != "" && selector != "" {
		interaction := plan.Target.Interaction
		g.Go(func() error {
			// Fire at ~40% into the shot so the click lands mid-motion.
			delay := time.Duration(maxf(0.3, plan.Duration*0.4) * float64(time.Second))
			if err := sleep(ctx, delay); err != nil {
				return err
			}

			SimulateCursorMove(page, selector)
			if err := sleep(ctx, 150*time.Millisecond); err != nil {
				return err
			}

			switch interaction {
			case "click":
				triggerClickRipple(page, selector)
				if el, err := page.Element(selector); err == nil {
					if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
						log.Warn().Err(err).Str("selector", selector).Msg("click failed")
					}
				}
			case "hover":
				if el, err := page.Element(selector); err == nil {
					if err := el.Hover(); err != nil {
						log.Warn().Err(err).Str("selector", selector).Msg("hover failed")
					}
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// smoothScroll animates an eased scroll over the shot duration. The scroll
// distance is 2.5 viewports scaled by the shot's zoom factor.
func smoothScroll(ctx context.Context, page *rod.Page, duration time.Duration, factor float64) error {
	js := `(factor, durMs) => {
		const distance = window.innerHeight * 2.5 * factor;
		const startY = window.scrollY;
		const startTime = performance.now();
		function step() {
			const progress = Math.min((performance.now() - startTime) / durMs, 1);
			const eased = 1 - Math.pow(1 - progress, 3);
			window.scrollTo(0, startY + distance * eased);
			if (progress < 1) requestAnimationFrame(step);
		}
		requestAnimationFrame(step);
	}`
	if _, err := page.Eval(js, factor, duration.Milliseconds()); err != nil {
		log.Warn().Err(err).Msg("scroll animation failed")
	}
	return sleep(ctx, duration)
}

// holdOnElement brings the element into view and holds for the shot; the
// actual zoom is applied later by the zoompan stage.
func holdOnElement(ctx context.Context, page *rod.Page, selector string, duration time.Duration) error {
	if selector != "" {
		FocusElement(page, selector)
	}
	return sleep(ctx, duration)
}

// smoothPan scrolls the target into center frame, or advances by most of a
// viewport when the target is missing.
func smoothPan(ctx context.Context, page *rod.Page, selector string, duration time.Duration) error {
	if selector != "" {
		js := `(sel) => {
			const el = document.querySelector(sel);
			if (el) {
				el.scrollIntoView({ behavior: 'smooth', block: 'center', inline: 'center' });
				return true;
			}
			window.scrollBy({ top: window.innerHeight * 0.8, behavior: 'smooth' });
			return false;
		}`
		if _, err := page.Eval(js, selector); err != nil {
			log.Warn().Err(err).Str("selector", selector).Msg("pan failed")
		}
	}
	return sleep(ctx, duration)
}

// FocusElement scrolls the target to the center of the viewport.
func FocusElement(page *rod.Page, selector string) {
	if selector == "" {
		return
	}
	js := `(sel) => {
		const el = document.querySelector(sel);
		if (el) el.scrollIntoView({ behavior: 'smooth', block: 'center' });
	}`
	if _, err := page.Eval(js, selector); err != nil {
		log.Warn().Err(err).Str("selector", selector).Msg("focus failed")
	}
}

// HighlightElement draws a pulsing border around the target.
func HighlightElement(page *rod.Page, selector string, glow bool) {
	js := `(sel, useGlow) => {
		const el = document.querySelector(sel);
		if (!el) return;
		const highlight = document.createElement('div');
		highlight.style.cssText =
			'position: absolute; pointer-events: none; border: 3px solid #5b2bee;' +
			'border-radius: 8px; z-index: 10000; animation: promo-pulse 2s ease-in-out infinite;' +
			(useGlow ? 'box-shadow: 0 0 20px rgba(91, 43, 238, 0.6);' : '');
		const rect = el.getBoundingClientRect();
		highlight.style.top = (rect.top + window.scrollY - 5) + 'px';
		highlight.style.left = (rect.left + window.scrollX - 5) + 'px';
		highlight.style.width = (rect.width + 10) + 'px';
		highlight.style.height = (rect.height + 10) + 'px';
		document.body.appendChild(highlight);
		if (!document.getElementById('promo-pulse-style')) {
			const style = document.createElement('style');
			style.id = 'promo-pulse-style';
			style.textContent = '@keyframes promo-pulse {' +
				'0%, 100% { opacity: 0.7; transform: scale(1); }' +
				'50% { opacity: 1; transform: scale(1.02); } }';
			document.head.appendChild(style);
		}
	}`
	if _, err := page.Eval(js, selector, glow); err != nil {
		log.Warn().Err(err).Msg("highlight failed")
	}
}

// SimulateCursorMove animates a fake cursor toward the target center so the
// recording shows intent before the click lands.
func SimulateCursorMove(page *rod.Page, selector string) {
	js := `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return;
		const rect = el.getBoundingClientRect();
		const targetX = rect.left + rect.width / 2;
		const targetY = rect.top + rect.height / 2;
		let cursor = document.getElementById('promo-cursor');
		if (!cursor) {
			cursor = document.createElement('div');
			cursor.id = 'promo-cursor';
			cursor.style.cssText =
				'position: fixed; width: 28px; height: 28px;' +
				'background: url("data:image/svg+xml,%3Csvg xmlns=\'http://www.w3.org/2000/svg\' width=\'24\' height=\'24\' viewBox=\'0 0 24 24\' fill=\'white\' stroke=\'%235b2bee\' stroke-width=\'2\'%3E%3Cpath d=\'M3 3l7.07 16.97 2.51-7.39 7.39-2.51L3 3z\'/%3E%3C/svg%3E") no-repeat;' +
				'z-index: 2147483647; pointer-events: none;' +
				'transition: transform 0.8s cubic-bezier(0.34, 1.56, 0.64, 1);' +
				'transform: translate(-100px, -100px);' +
				'filter: drop-shadow(0 2px 4px rgba(0,0,0,0.3));';
			document.body.appendChild(cursor);
		}
		cursor.style.transform = 'translate(' + targetX + 'px, ' + targetY + 'px)';
	}`
	if _, err := page.Eval(js, selector); err != nil {
		log.Warn().Err(err).Msg("cursor animation failed")
	}
}

// triggerClickRipple expands a ring from the click point.
func triggerClickRipple(page *rod.Page, selector string) {
	js := `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return;
		const rect = el.getBoundingClientRect();
		const x = rect.left + rect.width / 2;
		const y = rect.top + rect.height / 2;
		const ripple = document.createElement('div');
		ripple.style.cssText =
			'position: fixed; top: ' + y + 'px; left: ' + x + 'px;' +
			'width: 10px; height: 10px; background: rgba(91, 43, 238, 0.4);' +
			'border: 2px solid #5b2bee; border-radius: 50%; pointer-events: none;' +
			'z-index: 2147483646; transform: translate(-50%, -50%);' +
			'animation: promo-ripple 0.6s ease-out forwards;';
		if (!document.getElementById('promo-ripple-style')) {
			const style = document.createElement('style');
			style.id = 'promo-ripple-style';
			style.textContent = '@keyframes promo-ripple {' +
				'0% { width: 10px; height: 10px; opacity: 1; border-width: 4px; }' +
				'100% { width: 100px; height: 100px; opacity: 0; border-width: 1px; } }';
			document.head.appendChild(style);
		}
		document.body.appendChild(ripple);
		setTimeout(() => ripple.remove(), 700);
	}`
	if _, err := page.Eval(js, selector); err != nil {
		log.Warn().Err(err).Msg("ripple animation failed")
	}
}
