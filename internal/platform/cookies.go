package platform

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"tubevault/internal/utils/logging"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
	"golang.org/x/net/publicsuffix"
)

const siteURL = "https://www.youtube.com/"

// NewHTTPClient builds the shared HTTP client, optionally pre-loading the
// user's browser cookies for the platform domain (age/region-restricted
// videos resolve with them where they would otherwise fail).
func NewHTTPClient(ctx context.Context, useBrowserCookies bool) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Jar: jar}

	if useBrowserCookies {
		loadBrowserCookies(ctx, jar)
	}
	return client, nil
}

// loadBrowserCookies imports the browser's platform cookies into the jar.
// Best-effort: a locked or unreadable browser store just means no cookies.
func loadBrowserCookies(ctx context.Context, jar http.CookieJar) {
	domain, err := baseDomain(siteURL)
	if err != nil {
		logging.E("Failed to derive cookie domain: %v", err)
		return
	}

	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil {
		logging.D(2, "Failed reading browser cookies: %v", err)
		return
	}
	if len(kookyCookies) == 0 {
		logging.I("No browser cookies found for %s", domain)
		return
	}

	u, err := url.Parse(siteURL)
	if err != nil {
		return
	}
	jar.SetCookies(u, convertToHTTPCookies(kookyCookies))
	logging.I("Loaded %d browser cookies for %s", len(kookyCookies), domain)
}

// baseDomain returns the base domain for an inputted URL.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return publicsuffix.EffectiveTLDPlusOne(u.Hostname())
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Path:   c.Path,
			Domain: c.Domain,
			Secure: c.Secure,
		}
	}
	return httpCookies
}
