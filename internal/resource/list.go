package resource

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
)

// List returns the res:// URIs of every servable file under the root,
// sorted. Hidden paths are omitted. OS roots are walked concurrently;
// symlinked files are listed when their target is a regular file inside the
// root, symlinked directories are not descended.
func (r *Resolver) List(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)
	add := func(vpath string) {
		if r.isHidden(vpath) {
			return
		}
		mu.Lock()
		paths = append(paths, Scheme+"://"+vpath)
		mu.Unlock()
	}

	var err error
	if r.realRoot != "" {
		conf := fastwalk.Config{Follow: false}
		err = fastwalk.Walk(&conf, r.realRoot, func(p string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err != nil {
				return nil
			}
			rel, relErr := filepath.Rel(r.realRoot, p)
			if relErr != nil {
				return nil
			}
			vpath := "/" + filepath.ToSlash(rel)
			if r.servable(p, vpath, d) {
				add(vpath)
			}
			return nil
		})
	} else {
		err = afero.Walk(r.fs, "/", func(p string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			add(path.Clean("/" + filepath.ToSlash(p)))
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func (r *Resolver) servable(full, vpath string, d os.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&os.ModeSymlink == 0 || r.guardSymlinks(vpath) != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}
