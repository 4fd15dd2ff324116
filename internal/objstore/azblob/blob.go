package azblob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kailas-cloud/evidex/internal/objstore"
)

const metaPrefix = "X-Ms-Meta-"

// Get downloads a blob with its content type and metadata.
func (c *Client) Get(ctx context.Context, container, key string) (*objstore.Object, error) {
	hdr, body, err := c.do(ctx, objstore.OpGet, http.MethodGet, c.blobURL(container, key, nil), nil, nil)
	if err != nil {
		return nil, err
	}
	return &objstore.Object{
		Data:        body,
		ContentType: hdr.Get("Content-Type"),
		Metadata:    parseMetadata(hdr),
	}, nil
}

// Metadata fetches blob metadata without downloading the body.
func (c *Client) Metadata(ctx context.Context, container, key string) (map[string]string, error) {
	hdr, _, err := c.do(ctx, objstore.OpHead, http.MethodHead, c.blobURL(container, key, nil), nil, nil)
	if err != nil {
		return nil, err
	}
	return parseMetadata(hdr), nil
}

// Exists reports whether the blob is present.
func (c *Client) Exists(ctx context.Context, container, key string) (bool, error) {
	_, _, err := c.do(ctx, objstore.OpHead, http.MethodHead, c.blobURL(container, key, nil), nil, nil)
	if errors.Is(err, objstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put uploads a block blob, overwriting any existing one.
func (c *Client) Put(ctx context.Context, container, key string, obj *objstore.Object) error {
	if obj == nil {
		return &objstore.Error{Op: objstore.OpPut, Err: fmt.Errorf("object is required")}
	}

	headers := map[string]string{"x-ms-blob-type": "BlockBlob"}
	if obj.ContentType != "" {
		headers["Content-Type"] = obj.ContentType
	}
	for k, v := range obj.Metadata {
		headers["x-ms-meta-"+k] = v
	}

	_, _, err := c.do(ctx, objstore.OpPut, http.MethodPut, c.blobURL(container, key, nil), obj.Data, headers)
	return err
}

// Copy duplicates a blob into another container under the same key and waits
// until the service reports the copy as complete.
func (c *Client) Copy(ctx context.Context, srcContainer, dstContainer, key string) error {
	headers := map[string]string{"x-ms-copy-source": c.blobURL(srcContainer, key, nil)}
	hdr, _, err := c.do(ctx, objstore.OpCopy, http.MethodPut, c.blobURL(dstContainer, key, nil), nil, headers)
	if err != nil {
		return err
	}

	status := hdr.Get("x-ms-copy-status")
	for i := 0; status == "pending" && i < copyPollMax; i++ {
		if err := sleep(ctx, copyPollInterval); err != nil {
			return &objstore.Error{Op: objstore.OpCopy, Err: err}
		}
		h, _, err := c.do(ctx, objstore.OpCopy, http.MethodHead, c.blobURL(dstContainer, key, nil), nil, nil)
		if err != nil {
			return err
		}
		status = h.Get("x-ms-copy-status")
	}
	if status != "success" {
		return &objstore.Error{Op: objstore.OpCopy, Err: fmt.Errorf("copy status %q", status)}
	}
	return nil
}

// Delete removes a blob.
func (c *Client) Delete(ctx context.Context, container, key string) error {
	_, _, err := c.do(ctx, objstore.OpDelete, http.MethodDelete, c.blobURL(container, key, nil), nil, nil)
	return err
}

// EnsureContainer creates the container; an existing one is not an error.
func (c *Client) EnsureContainer(ctx context.Context, container string) error {
	q := url.Values{"restype": {"container"}}
	_, _, err := c.do(ctx, objstore.OpContainer, http.MethodPut, c.blobURL(container, "", q), nil, nil)
	if errors.Is(err, objstore.ErrAlreadyExists) {
		return nil
	}
	return err
}

// parseMetadata extracts x-ms-meta-* headers with lowercased keys.
func parseMetadata(hdr http.Header) map[string]string {
	meta := make(map[string]string)
	for k, vs := range hdr {
		if len(vs) == 0 || len(k) <= len(metaPrefix) {
			continue
		}
		if strings.EqualFold(k[:len(metaPrefix)], metaPrefix) {
			meta[strings.ToLower(k[len(metaPrefix):])] = vs[0]
		}
	}
	return meta
}
