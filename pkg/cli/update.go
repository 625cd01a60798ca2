package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const (
	updateRepo       = "Fepozopo/photoedit"
	githubReleaseAPI = "https://api.github.com/repos/%s/releases"
)

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

func newUpdateCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &updater{
				http:    &http.Client{Timeout: 10 * time.Second},
				api:     fmt.Sprintf(githubReleaseAPI, updateRepo),
				in:      bufio.NewReader(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
				current: Version,
				yes:     yes,
				install: selfupdate.UpdateTo,
			}
			return u.run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "install without asking")
	return cmd
}

type updater struct {
	http    *http.Client
	api     string
	in      *bufio.Reader
	out     io.Writer
	current string
	yes     bool
	install func(assetURL, exe string) error
}

func (u *updater) run(ctx context.Context) error {
	printKeyValue(u.out, "current", u.current)
	latest, err := u.latest(ctx)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		printInfo(u.out, "no releases found for %s", updateRepo)
		return nil
	}
	printKeyValue(u.out, "latest", latest.Version.String())

	cur, perr := semver.ParseTolerant(u.current)
	if perr == nil && latest.Version.LTE(cur) {
		printSuccess(u.out, "already running the latest version")
		return nil
	}
	if latest.AssetURL == "" {
		printWarning(u.out, "version %s has no downloadable asset for this platform", latest.Version)
		return nil
	}
	if !u.yes {
		ok, err := confirm(u.in, u.out, fmt.Sprintf("Update to %s now?", latest.Version))
		if err != nil {
			return fmt.Errorf("read answer: %w", err)
		}
		if !ok {
			printInfo(u.out, "update cancelled")
			return nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := u.install(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	printSuccess(u.out, "updated to %s, restart photoedit to use it", latest.Version)
	return nil
}

// latest returns the highest published, non-prerelease semver release, or nil
// when there is none. Tags are matched loosely ("v1.2.3", "release-1.2.3").
func (u *updater) latest(ctx context.Context) (*selfupdate.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.api, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github API request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("decode github releases: %w", err)
	}

	var best *selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.ParseTolerant(match)
		if match == "" || err != nil {
			continue
		}
		if best != nil && !v.GT(best.Version) {
			continue
		}
		asset := ""
		for _, a := range r.Assets {
			if asset == "" {
				asset = a.BrowserDownloadURL
			}
			if platformAsset(a.Name) {
				asset = a.BrowserDownloadURL
				break
			}
		}
		best = &selfupdate.Release{Version: v, AssetURL: asset}
	}
	return best, nil
}

func platformAsset(name string) bool {
	n := strings.ToLower(name)
	for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
		if strings.Contains(n, hint) {
			return true
		}
	}
	return false
}
