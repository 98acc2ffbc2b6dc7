package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// FileSource lists, reads and watches files under a root directory.
type FileSource interface {
	// Root returns the directory being served.
	Root() string

	// Scan returns every visible regular file under the root.
	Scan(ctx context.Context) ([]string, error)

	// ChangedSince returns visible regular files modified after since.
	ChangedSince(ctx context.Context, since time.Time) ([]string, error)

	// Read returns a file's raw bytes.
	Read(path string) ([]byte, error)

	// Watch streams changes until ctx is cancelled or the source is closed,
	// then closes the channel.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close releases watch resources. Safe to call more than once.
	Close() error
}
