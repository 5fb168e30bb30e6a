package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ImageProber は記事のアイキャッチ画像URLの到達確認インターフェース。
type ImageProber interface {
	// Probe は画像URLにHEADリクエストを送り、画像として取得できるかを確認する。
	Probe(ctx context.Context, imageURL string) error
}

// SafeClientProvider はSSRF防止付きHTTPクライアントの生成インターフェース。
// security.URLGuardServiceの部分集合として定義する。
type SafeClientProvider interface {
	NewSafeClient(timeout time.Duration) *http.Client
}

// probeTimeout は画像到達確認のHTTPタイムアウト。
const probeTimeout = 5 * time.Second

// HTTPImageProber はSSRF防止付きHTTPクライアントで画像URLを確認するImageProber。
type HTTPImageProber struct {
	client *http.Client
}

// NewHTTPImageProber はHTTPImageProberを生成する。
func NewHTTPImageProber(provider SafeClientProvider) *HTTPImageProber {
	return &HTTPImageProber{
		client: provider.NewSafeClient(probeTimeout),
	}
}

// Probe は画像URLにHEADリクエストを送り、2xxかつimage/*のレスポンスを確認する。
func (p *HTTPImageProber) Probe(ctx context.Context, imageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("probe returned non-image content type: %s", contentType)
	}

	return nil
}

// compile-time interface check
var _ ImageProber = (*HTTPImageProber)(nil)
