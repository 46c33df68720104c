// Package pages implements the terminal renditions of the client screens:
// project list, project detail, review detail with its annotation overlay,
// and the standalone upload flow. Each page owns its full state explicitly
// and re-renders from scratch after every reload, so repeated change events
// always produce identical output.
package pages

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/common"
)

// nowFn is a test seam for transient UI state (tooltips).
var nowFn = time.Now

// Box is the rendered bounding box of an asset, in pixels.
type Box struct {
	W int
	H int
}

// fracAt converts a pixel position inside box into normalized fractions,
// clamped into [0,1] so clicks racing a layout shift stay in range.
func fracAt(px, py int, box Box) (float64, float64) {
	if box.W <= 0 || box.H <= 0 {
		return 0, 0
	}
	return common.Clamp01(float64(px) / float64(box.W)), common.Clamp01(float64(py) / float64(box.H))
}

// pinAt converts normalized fractions back to pixel positions in box.
// Fractions and box size change independently, so pins recompute on every
// render instead of caching pixels.
func pinAt(x, y float64, box Box) (int, int) {
	return int(x * float64(box.W)), int(y * float64(box.H))
}

// fileNameFromURL extracts the last path segment of a file URL for display,
// falling back to the raw string when it does not parse.
func fileNameFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return fileURL
	}
	parts := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	name := parts[len(parts)-1]
	if name == "" {
		return fileURL
	}
	return name
}

// indicator renders the aggregate badge of a project: once every file is
// approved the badge flips to the approved form; an empty project still
// reads "0 waiting".
func indicator(stats *api.Stats) string {
	if stats == nil {
		return "0 waiting"
	}
	if stats.Total > 0 && stats.Waiting == 0 {
		return fmt.Sprintf("%d approved", stats.Approved)
	}
	return fmt.Sprintf("%d waiting", stats.Waiting)
}

// statusPill renders the review status for display.
func statusPill(status string) string {
	if status == common.StatusApproved {
		return "[approved]"
	}
	return "[needs changes]"
}
