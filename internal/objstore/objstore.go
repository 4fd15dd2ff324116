// Package objstore defines the object store contract used for document
// blobs. Implementations live in subpackages (azblob).
package objstore

import "context"

// Object is a stored blob with its transport attributes.
type Object struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// Pinger reports store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reader retrieves blobs and their attributes.
type Reader interface {
	// Get downloads a blob with its content type and metadata.
	Get(ctx context.Context, container, key string) (*Object, error)
	// Metadata fetches blob metadata without the body. Keys are lowercased.
	Metadata(ctx context.Context, container, key string) (map[string]string, error)
	// Exists reports whether the blob is present.
	Exists(ctx context.Context, container, key string) (bool, error)
}

// Writer mutates blobs and containers.
type Writer interface {
	// Put uploads a blob, overwriting any existing one.
	Put(ctx context.Context, container, key string, obj *Object) error
	// Copy duplicates a blob into another container under the same key and
	// waits until the copy is complete.
	Copy(ctx context.Context, srcContainer, dstContainer, key string) error
	// Delete removes a blob.
	Delete(ctx context.Context, container, key string) error
	// EnsureContainer creates the container when it does not exist yet.
	EnsureContainer(ctx context.Context, container string) error
}

// Store is the full object store surface.
type Store interface {
	Pinger
	Reader
	Writer

	Close()
}

// Move transfers a blob between containers: the destination container is
// created when missing, and the source is deleted only after the copy is
// verified.
func Move(ctx context.Context, w Writer, srcContainer, dstContainer, key string) error {
	if err := w.EnsureContainer(ctx, dstContainer); err != nil {
		return err
	}
	if err := w.Copy(ctx, srcContainer, dstContainer, key); err != nil {
		return err
	}
	return w.Delete(ctx, srcContainer, key)
}
