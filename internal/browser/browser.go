// Package browser owns the headless browser session: launch, viewport,
// navigation, popup dismissal and the basic capture mode.
package browser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/Ansarii/autopromo-video/internal/config"
)

// Launch starts a headless browser hardened for container environments.
func Launch() (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-software-rasterizer").
		Set("disable-web-security")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return b, nil
}

// NewPage opens a page sized for the requested output format.
func NewPage(b *rod.Browser, format string) (*rod.Page, error) {
	vp, ok := config.Viewports[format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", format)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return page, nil
}

// Navigate loads the URL, waits for load plus a settle period for lazy
// content, then clears blocking popups.
func Navigate(page *rod.Page, url string) error {
	p := page.Timeout(30 * time.Second)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}

	time.Sleep(2 * time.Second)
	DismissPopups(page)
	time.Sleep(time.Second)
	return nil
}

// DismissPopups clears cookie banners, modals and scroll locks before any
// capture starts. Everything is best effort; a page with a stubborn modal
// still gets recorded.
func DismissPopups(page *rod.Page) {
	js := `() => {
		const closeSelectors = [
			'button[aria-label*="close" i]',
			'button[aria-label*="dismiss" i]',
			'button[title*="close" i]',
			'button.close',
			'button.modal-close',
			'[class*="close-button"]',
			'[class*="close-btn"]',
			'[data-dismiss="modal"]',
			'.modal button:last-child',
			'[role="dialog"] button:last-child'
		];
		for (const selector of closeSelectors) {
			try {
				for (const btn of document.querySelectorAll(selector)) {
					const rect = btn.getBoundingClientRect();
					if (rect.width > 0 && rect.height > 0) btn.click();
				}
			} catch (e) {}
		}

		const overlaySelectors = [
			'.modal', '.modal-backdrop', '.overlay', '[role="dialog"]',
			'[class*="modal"]', '[class*="popup"]', '[class*="overlay"]'
		];
		for (const selector of overlaySelectors) {
			try {
				for (const el of document.querySelectorAll(selector)) {
					const style = window.getComputedStyle(el);
					if (style.position === 'fixed' && parseInt(style.zIndex) > 100) el.remove();
				}
			} catch (e) {}
		}

		document.dispatchEvent(new KeyboardEvent('keydown', { key: 'Escape', keyCode: 27 }));
		document.dispatchEvent(new KeyboardEvent('keyup', { key: 'Escape', keyCode: 27 }));

		document.body.style.overflow = 'auto';
		document.documentElement.style.overflow = 'auto';

		document.querySelectorAll('[class*="backdrop"], [class*="mask"]').forEach(el => {
			try { el.remove(); } catch (e) {}
		});
	}`
	if _, err := page.Eval(js); err != nil {
		log.Warn().Err(err).Msg("popup dismissal failed")
	}
}

// Metadata is the basic-mode page summary.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	H1          string `json:"h1"`
}

// ExtractMetadata pulls title, meta description and first heading.
func ExtractMetadata(page *rod.Page) (Metadata, error) {
	js := `() => {
		const getMeta = (name) => {
			const meta = document.querySelector('meta[name="' + name + '"], meta[property="' + name + '"]');
			return meta ? meta.getAttribute('content') : '';
		};
		const h1 = document.querySelector('h1');
		return JSON.stringify({
			title: document.title || 'Untitled',
			description: getMeta('description') || getMeta('og:description') || '',
			h1: h1 ? h1.textContent.trim() : ''
		});
	}`
	obj, err := page.Eval(js)
	if err != nil {
		return Metadata{}, fmt.Errorf("extract metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal([]byte(obj.Value.Str()), &md); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

// Login fills a login form with the given credentials. Failure is reported
// but never blocks the job; the public parts of the page still get captured.
func Login(page *rod.Page, creds *config.Credentials) bool {
	if creds == nil || creds.Username == "" || creds.Password == "" {
		return false
	}

	if creds.LoginURL != "" {
		if err := Navigate(page, creds.LoginURL); err != nil {
			log.Warn().Err(err).Msg("login page failed to load")
			return false
		}
	}

	user, err := page.Timeout(5 * time.Second).Element(
		`input[type="email"], input[type="text"][name*="user"], input[name="username"], input[id*="email"]`)
	if err != nil {
		log.Warn().Msg("login form not found")
		return false
	}
	pass, err := page.Timeout(5 * time.Second).Element(`input[type="password"]`)
	if err != nil {
		log.Warn().Msg("password field not found")
		return false
	}

	if err := user.Input(creds.Username); err != nil {
		log.Warn().Err(err).Msg("username input failed")
		return false
	}
	if err := pass.Input(creds.Password); err != nil {
		log.Warn().Err(err).Msg("password input failed")
		return false
	}

	if submit, err := page.Timeout(3 * time.Second).Element(`button[type="submit"], input[type="submit"]`); err == nil {
		if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
			log.Warn().Err(err).Msg("login submit failed")
			return false
		}
		if err := page.Timeout(15 * time.Second).WaitLoad(); err != nil {
			log.Warn().Err(err).Msg("post-login load timed out")
		}
	}

	log.Info().Msg("login completed")
	return true
}
