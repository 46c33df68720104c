package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/askelund/proofdeck/internal/client/api"
)

// UploadPage is the standalone single-file flow: upload a file with no
// project and hand back a direct review link.
type UploadPage struct {
	api *api.Client
	out io.Writer
	// accessKey is an optional passthrough; if the link that led here
	// carried a key, the produced review link carries it too.
	accessKey string
}

func NewUploadPage(c *api.Client, out io.Writer, accessKey string) *UploadPage {
	return &UploadPage{api: c, out: out, accessKey: accessKey}
}

// Upload stores the file and prints the shareable review link.
func (p *UploadPage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (*api.Review, error) {
	rev, err := p.api.Upload(ctx, "", "", filename, contentType, data)
	if err != nil {
		return nil, err
	}

	link, err := p.api.ReviewShareLink(ctx, rev.ID, p.accessKey)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "uploaded %s\nshare: %s\n", fileNameFromURL(rev.FileURL), link)
	return rev, nil
}
