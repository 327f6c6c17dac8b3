package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/Ansarii/autopromo-video/internal/config"
)

// Clickable is an interactive element ranked by marketing relevance.
type Clickable struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Selector string  `json:"selector"`
	Top      float64 `json:"top"`
}

// BasicResult is the outcome of a basic-mode capture: one continuous frame
// sequence presented as a single shot.
type BasicResult struct {
	Frames   int
	Metadata Metadata
}

// FindClickables scores visible buttons and links, preferring strong action
// words, above-the-fold placement and size. Returns the top three.
func FindClickables(page *rod.Page) ([]Clickable, error) {
	js := `() => {
		const isVisible = (el) => {
			const style = window.getComputedStyle(el);
			const rect = el.getBoundingClientRect();
			if (!rect || (rect.width === 0 && rect.height === 0)) return false;
			if (style.display === 'none' || style.visibility === 'hidden' || style.opacity === '0') return false;
			return rect.bottom > 0 && rect.right > 0 &&
				rect.top < window.innerHeight && rect.left < window.innerWidth;
		};
		const uniqueSelector = (el) => {
			if (el.id) return '#' + el.id;
			const parts = [];
			let current = el;
			while (current && parts.length < 4) {
				let part = current.nodeName.toLowerCase();
				if (current.className && typeof current.className === 'string') {
					const cls = current.className.split(/\s+/).filter(Boolean).slice(0, 2).join('.');
					if (cls) part += '.' + cls;
				}
				parts.unshift(part);
				current = current.parentElement;
			}
			return parts.join(' > ');
		};

		const high = ['try', 'demo', 'playground', 'get started', 'start', 'sign up', 'launch', 'explore'];
		const medium = ['features', 'pricing', 'how it works', 'learn more', 'docs', 'documentation'];
		const all = [
			...document.querySelectorAll('button'),
			...document.querySelectorAll('a[href]'),
			...document.querySelectorAll('[role="button"]'),
			...document.querySelectorAll('[role="tab"]'),
		];

		const clickable = [];
		for (const el of all) {
			if (!isVisible(el)) continue;
			const rect = el.getBoundingClientRect();
			if (rect.width < 60 || rect.height < 20) continue;
			const text = (el.innerText || el.textContent || '').toLowerCase().trim();
			if (!text) continue;

			let score = 0;
			if (high.some(k => text.includes(k))) score += 10;
			if (medium.some(k => text.includes(k))) score += 5;
			if (rect.top < 150) score += 3;
			score += Math.min(rect.width * rect.height / 5000, 3);

			if (score > 0) {
				clickable.push({ text, score, selector: uniqueSelector(el), top: rect.top });
			}
		}
		clickable.sort((a, b) => b.score - a.score);
		return JSON.stringify(clickable.slice(0, 3));
	}`
	obj, err := page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("find clickables: %w", err)
	}

	var out []Clickable
	if err := json.Unmarshal([]byte(obj.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("decode clickables: %w", err)
	}
	return out, nil
}

// BasicCapture records the page as three phases: hero hold (15% of frames),
// interactions (50%) and a smooth scroll through the rest (35%). Output is a
// flat frame_%04d.jpg sequence in outputDir at the legacy capture rate.
func BasicCapture(page *rod.Page, duration int, outputDir string) (*BasicResult, error) {
	md, err := ExtractMetadata(page)
	if err != nil {
		md = Metadata{Title: "Untitled"}
	}

	fps := config.LegacyCaptureFPS
	totalFrames := duration * fps
	frameCount := 0

	capture := func() error {
		quality := 80
		data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format:  proto.PageCaptureScreenshotFormatJpeg,
			Quality: &quality,
		})
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", frameCount))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		frameCount++
		time.Sleep(time.Second / time.Duration(fps))
		return nil
	}

	// Phase 1: hero hold.
	heroFrames := totalFrames * 15 / 100
	for i := 0; i < heroFrames; i++ {
		if err := capture(); err != nil {
			return nil, fmt.Errorf("hero capture: %w", err)
		}
	}

	// Phase 2: interactions.
	clickables, err := FindClickables(page)
	if err != nil {
		log.Warn().Err(err).Msg("clickable scan failed")
	}
	log.Info().Int("count", len(clickables)).Msg("clickable elements found")

	interactionFrames := totalFrames * 50 / 100
	perElement := interactionFrames
	if len(clickables) > 0 {
		perElement = interactionFrames / len(clickables)
	}

	for _, el := range clickables {
		scrollTo(page, el.Selector)
		for i := 0; i < perElement*3/10; i++ {
			if err := capture(); err != nil {
				return nil, fmt.Errorf("interaction capture: %w", err)
			}
		}

		clickJS := `(sel) => {
			const el = document.querySelector(sel);
			if (el) el.click();
		}`
		if _, err := page.Eval(clickJS, el.Selector); err != nil {
			log.Warn().Err(err).Str("text", el.Text).Msg("click failed")
		} else {
			log.Debug().Str("text", el.Text).Msg("clicked element")
		}

		for i := 0; i < perElement*7/10; i++ {
			if err := capture(); err != nil {
				return nil, fmt.Errorf("interaction capture: %w", err)
			}
		}
	}

	// Phase 3: scroll out the remaining frames across the page height.
	scrollFrames := totalFrames - frameCount
	if scrollFrames > 0 {
		var pageHeight float64
		if obj, err := page.Eval(`() => document.documentElement.scrollHeight - window.innerHeight`); err == nil {
			pageHeight = obj.Value.Num()
		}
		if pageHeight < 0 {
			pageHeight = 0
		}

		for i := 0; i < scrollFrames; i++ {
			progress := 0.0
			if scrollFrames > 1 {
				progress = float64(i) / float64(scrollFrames-1)
			}
			y := pageHeight * progress
			if _, err := page.Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
				log.Warn().Err(err).Msg("scroll failed")
			}
			if err := capture(); err != nil {
				return nil, fmt.Errorf("scroll capture: %w", err)
			}
		}
	}

	log.Info().Int("frames", frameCount).Msg("basic capture done")
	return &BasicResult{Frames: frameCount, Metadata: md}, nil
}

func scrollTo(page *rod.Page, selector string) {
	js := `(sel) => {
		const el = document.querySelector(sel);
		if (el) el.scrollIntoView({ behavior: 'smooth', block: 'center' });
	}`
	if _, err := page.Eval(js, selector); err != nil {
		log.Warn().Err(err).Str("selector", selector).Msg("scroll to element failed")
	}
}
