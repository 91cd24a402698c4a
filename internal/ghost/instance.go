// Package ghost locates a locally running Ghost instance.
package ghost

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// ErrNoInstance is returned when `ghost ls` reports no local site.
var ErrNoInstance = errors.New("no running Ghost instance found")

// Instance is a running local Ghost site.
type Instance struct {
	URL   string
	Title string
}

var localURLPattern = regexp.MustCompile(`http://(?:localhost|127\.0\.0\.1):\d+`)

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Discover runs the Ghost CLI, scans its listing output for local site
// URLs and returns the instance to develop against. With multiple
// running sites each page title is fetched and the operator picks one
// interactively.
func Discover(ctx context.Context) (*Instance, error) {
	ghostPath, err := exec.LookPath("ghost")
	if err != nil {
		return nil, fmt.Errorf("ghost CLI not found on PATH: %w", err)
	}

	lsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(lsCtx, ghostPath, "ls")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ghost ls failed: %w", err)
	}

	urls := ExtractLocalURLs(string(out))
	if len(urls) == 0 {
		return nil, ErrNoInstance
	}

	if len(urls) == 1 {
		return &Instance{URL: urls[0]}, nil
	}

	instances := make([]*Instance, 0, len(urls))
	for _, u := range urls {
		title, err := fetchTitle(ctx, u)
		if err != nil {
			log.Debug().Err(err).Str("url", u).Msg("Failed to fetch site title")
		}
		instances = append(instances, &Instance{URL: u, Title: title})
	}

	return choose(instances)
}

// ExtractLocalURLs returns the unique local Ghost URLs found in the
// CLI listing output, in order of appearance.
func ExtractLocalURLs(output string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, u := range localURLPattern.FindAllString(output, -1) {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// ParseTitle extracts the page title from an HTML document, or "" when
// none is present.
func ParseTitle(html string) string {
	m := titlePattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func fetchTitle(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}

	return ParseTitle(string(body)), nil
}

// choose prompts for a single instance when stdin is a terminal and
// falls back to the first instance otherwise.
func choose(instances []*Instance) (*Instance, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return instances[0], nil
	}

	fmt.Println("Multiple running Ghost instances found:")
	for i, inst := range instances {
		label := inst.URL
		if inst.Title != "" {
			label = fmt.Sprintf("%s (%s)", inst.Title, inst.URL)
		}
		fmt.Printf("  %d) %s\n", i+1, label)
	}
	fmt.Print("Select an instance: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(instances) {
		return nil, fmt.Errorf("invalid selection: %s", strings.TrimSpace(line))
	}

	return instances[n-1], nil
}
