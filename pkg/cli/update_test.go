package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const releasesJSON = `[
  {"tag_name":"v0.3.0-rc1","prerelease":true,"assets":[{"name":"photoedit_linux_amd64","browser_download_url":"https://x/rc"}]},
  {"tag_name":"v0.2.0","assets":[{"name":"checksums.txt","browser_download_url":"https://x/sum"},{"name":"photoedit_linux_amd64","browser_download_url":"https://x/020"}]},
  {"tag_name":"release-0.1.5","assets":[]},
  {"tag_name":"nightly","name":"no version"},
  {"tag_name":"v9.9.9","draft":true}
]`

func releaseServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(releasesJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestUpdater(srv *httptest.Server, current, answer string, installed *string) (*updater, *bytes.Buffer) {
	var out bytes.Buffer
	return &updater{
		http:    srv.Client(),
		api:     srv.URL,
		in:      bufio.NewReader(strings.NewReader(answer)),
		out:     &out,
		current: current,
		install: func(url, exe string) error {
			*installed = url
			return nil
		},
	}, &out
}

func TestLatestRelease(t *testing.T) {
	var installed string
	u, _ := newTestUpdater(releaseServer(t), "0.1.0", "", &installed)
	rel, err := u.latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rel == nil || rel.Version.String() != "0.2.0" {
		t.Fatalf("expected 0.2.0, got %+v", rel)
	}
	if rel.AssetURL != "https://x/020" {
		t.Fatalf("expected the platform asset, got %q", rel.AssetURL)
	}
}

func TestUpdateInstallsAfterConfirmation(t *testing.T) {
	var installed string
	u, out := newTestUpdater(releaseServer(t), "0.1.0", "y\n", &installed)
	if err := u.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if installed != "https://x/020" {
		t.Fatalf("expected install of 0.2.0, got %q\n%s", installed, out)
	}
}

func TestUpdateDeclined(t *testing.T) {
	var installed string
	u, out := newTestUpdater(releaseServer(t), "0.1.0", "n\n", &installed)
	if err := u.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if installed != "" || !strings.Contains(out.String(), "update cancelled") {
		t.Fatalf("declined update must not install:\n%s", out)
	}
}

func TestUpdateAlreadyLatest(t *testing.T) {
	var installed string
	u, out := newTestUpdater(releaseServer(t), "v0.2.0", "", &installed)
	if err := u.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if installed != "" || !strings.Contains(out.String(), "already running the latest version") {
		t.Fatalf("unexpected update:\n%s", out)
	}
}
