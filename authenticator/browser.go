package authenticator

import (
	"context"

	"github.com/pkg/browser"
)

// BrowserNavigator opens URLs in the system browser
func BrowserNavigator(ctx context.Context, url string) error {
	return browser.OpenURL(url)
}
