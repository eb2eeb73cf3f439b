package toolchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/eddie-c-davis/gt4py/internal/errors"
)

// lockRetryDelay is how often a build waiting on another build's lock retries.
const lockRetryDelay = 50 * time.Millisecond

// DefaultCacheDir is used when the options leave CacheDir empty.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "stencilc")
	}
	return filepath.Join(os.TempDir(), "stencilc")
}

// CacheKey identifies a build: the stencil, its text and every option that
// changes the produced files.
func (tc *Toolchain) CacheKey(name, text string) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	t := tc.opts.Tools
	write(name, text, tc.opts.OptLevel(), t.Opt, t.Translate, t.Compile, t.Clang, t.Wrapper, tc.opts.Pipeline.CUDAPath)
	write(OptPasses(tc.opts.Pipeline)...)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Build compiles text inside the build cache. A build whose manifest is
// present is reused; concurrent builds of the same key wait on a file lock
// until ctx is done.
func (tc *Toolchain) Build(ctx context.Context, name, text string) (*Manifest, error) {
	root := tc.opts.CacheDir
	if root == "" {
		root = DefaultCacheDir()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.ResourceFailure("create", root, err)
	}

	key := tc.CacheKey(name, text)
	lock := flock.New(filepath.Join(root, key+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, errors.ResourceFailure("lock", lock.Path(), err)
	}
	if !locked {
		return nil, errors.ResourceFailure("lock", lock.Path(), ctx.Err())
	}
	defer lock.Unlock()

	dir := filepath.Join(root, key)
	manifestPath := filepath.Join(dir, ManifestName)
	if m, err := ReadManifest(manifestPath); err == nil && m.Key == key {
		log.Infof("using cached build %s", dir)
		m.Cached = true
		return m, nil
	}

	// Leftovers of an interrupted build.
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.ResourceFailure("clean", dir, err)
	}

	result, err := tc.Compile(ctx, name, text, dir)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		BuildID: uuid.Must(uuid.NewV7()).String(),
		Stencil: name,
		Key:     key,
		CUDA:    tc.opts.Pipeline.CUDA,
		Debug:   tc.opts.DebugMode,
		Created: time.Now().UTC(),
		Source:  filepath.Base(result.Source),
		Stages:  result.Stages,
		Binary:  filepath.Base(result.Binary),
		Dir:     dir,
	}
	// The manifest marks the build complete.
	if err := m.Write(manifestPath); err != nil {
		return nil, err
	}
	return m, nil
}

// Clean removes every cached build. Builds holding a lock are skipped. Lock
// files are never removed; a build waiting on one must share it with later
// builds.
func Clean(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.ResourceFailure("read", root, err)
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		lock := flock.New(filepath.Join(root, e.Name()+".lock"))
		locked, err := lock.TryLock()
		if err != nil || !locked {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err == nil {
			removed++
		}
		lock.Unlock()
	}
	return removed, nil
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
