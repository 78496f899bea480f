// Package media finds and downloads portrait stock clips for scene keywords,
// trying Pixabay first, then Pexels, then a locally generated fallback clip.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Minimum portrait resolution accepted for 1080x1920 output.
const (
	minWidth  = 720
	minHeight = 1280
)

// Clip is one downloadable stock video candidate.
type Clip struct {
	ID       string
	URL      string
	Width    int
	Height   int
	Provider string
}

// Fetcher searches and downloads stock footage. Empty API keys disable the
// corresponding provider; with neither key set every request produces the
// generated fallback clip.
type Fetcher struct {
	PixabayKey string
	PexelsKey  string
	CacheDir   string
	Client     *http.Client
	Logf       func(format string, v ...any)

	// Skip reports clips that should not be reused, typically backed by the
	// history store's clip cooldown. Nil means nothing is skipped.
	Skip func(ctx context.Context, clipID string) bool

	// APICalls counts provider search requests, for the run history.
	APICalls int

	used map[string]bool
}

// Calls reports the provider search requests made so far.
func (f *Fetcher) Calls() int { return f.APICalls }

// New returns a Fetcher caching downloads under cacheDir.
func New(pixabayKey, pexelsKey, cacheDir string) *Fetcher {
	return &Fetcher{
		PixabayKey: pixabayKey,
		PexelsKey:  pexelsKey,
		CacheDir:   cacheDir,
		Client:     &http.Client{Timeout: 90 * time.Second},
		used:       make(map[string]bool),
	}
}

// FetchClip returns a local path to a portrait clip for the keywords. Clips
// already used in this run and clips rejected by Skip are passed over.
func (f *Fetcher) FetchClip(ctx context.Context, keywords []string) (string, error) {
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("media: cache dir: %w", err)
	}
	query := strings.Join(keywords, " ")
	for _, search := range []func(context.Context, string) ([]Clip, error){f.searchPixabay, f.searchPexels} {
		clips, err := search(ctx, query)
		if err != nil {
			f.logf("stock search failed for %q: %v", query, err)
			continue
		}
		for _, clip := range clips {
			if f.used[clip.ID] {
				continue
			}
			if f.Skip != nil && f.Skip(ctx, clip.ID) {
				continue
			}
			path, err := f.download(ctx, clip)
			if err != nil {
				f.logf("download failed for %s clip %s: %v", clip.Provider, clip.ID, err)
				continue
			}
			f.used[clip.ID] = true
			return path, nil
		}
	}
	f.logf("no stock clip for %q, generating fallback", query)
	return f.fallbackClip(ctx, query)
}

// UsedClips returns the provider clip IDs consumed so far in this run.
func (f *Fetcher) UsedClips() []string {
	out := make([]string, 0, len(f.used))
	for id := range f.used {
		out = append(out, id)
	}
	return out
}

type pixabayResponse struct {
	Hits []struct {
		ID     int `json:"id"`
		Videos map[string]struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"videos"`
	} `json:"hits"`
}

func (f *Fetcher) searchPixabay(ctx context.Context, query string) ([]Clip, error) {
	if f.PixabayKey == "" {
		return nil, nil
	}
	u := fmt.Sprintf("https://pixabay.com/api/videos/?key=%s&q=%s&per_page=10&safesearch=true",
		f.PixabayKey, url.QueryEscape(query))
	var body pixabayResponse
	if err := f.getJSON(ctx, u, nil, &body); err != nil {
		return nil, err
	}
	var out []Clip
	for _, hit := range body.Hits {
		// Prefer larger renditions; pixabay keys them large/medium/small.
		for _, size := range []string{"large", "medium"} {
			v, ok := hit.Videos[size]
			if !ok || !portrait(v.Width, v.Height) {
				continue
			}
			out = append(out, Clip{
				ID:       fmt.Sprintf("pixabay-%d", hit.ID),
				URL:      v.URL,
				Width:    v.Width,
				Height:   v.Height,
				Provider: "pixabay",
			})
			break
		}
	}
	return out, nil
}

type pexelsResponse struct {
	Videos []struct {
		ID         int `json:"id"`
		VideoFiles []struct {
			Link   string `json:"link"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

func (f *Fetcher) searchPexels(ctx context.Context, query string) ([]Clip, error) {
	if f.PexelsKey == "" {
		return nil, nil
	}
	u := fmt.Sprintf("https://api.pexels.com/videos/search?query=%s&orientation=portrait&per_page=10",
		url.QueryEscape(query))
	headers := map[string]string{"Authorization": f.PexelsKey}
	var body pexelsResponse
	if err := f.getJSON(ctx, u, headers, &body); err != nil {
		return nil, err
	}
	var out []Clip
	for _, v := range body.Videos {
		for _, file := range v.VideoFiles {
			if !portrait(file.Width, file.Height) {
				continue
			}
			out = append(out, Clip{
				ID:       fmt.Sprintf("pexels-%d", v.ID),
				URL:      file.Link,
				Width:    file.Width,
				Height:   file.Height,
				Provider: "pexels",
			})
			break
		}
	}
	return out, nil
}

func portrait(w, h int) bool {
	return h > w && w >= minWidth && h >= minHeight
}

func (f *Fetcher) getJSON(ctx context.Context, u string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	f.APICalls++
	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media: status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// download fetches the clip into the cache, reusing an existing copy.
func (f *Fetcher) download(ctx context.Context, clip Clip) (string, error) {
	path := filepath.Join(f.CacheDir, clip.ID+".mp4")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clip.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media: download status %d", resp.StatusCode)
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, os.Rename(tmp, path)
}

// fallbackClip renders a neutral animated background so assembly never
// blocks on missing footage.
func (f *Fetcher) fallbackClip(ctx context.Context, query string) (string, error) {
	name := "fallback-" + sanitize(query) + ".mp4"
	path := filepath.Join(f.CacheDir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc2=size=1080x1920:rate=30:duration=12",
		"-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("media: fallback clip: %w: %s", err, tail(out))
	}
	return path, nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	out := b.String()
	if len(out) > 48 {
		out = out[:48]
	}
	if out == "" {
		out = "clip"
	}
	return out
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) logf(format string, v ...any) {
	if f.Logf != nil {
		f.Logf(format, v...)
	}
}

func tail(out []byte) string {
	const n = 300
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return strings.TrimSpace(string(out))
}
