package resource

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/mime"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/monitoring"
)

var errOutsideRoot = errors.New("path resolves outside the sandbox root")

// Response is the outcome of one resolution. Status is always 200 or 404.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Resolver serves files from a read-only sandbox root.
type Resolver struct {
	fs        afero.Fs
	realRoot  string // set for OS-backed roots; enables the symlink guard
	mimes     *mime.Registry
	indexFile string
	hidden    []string
	sniff     bool
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry replaces the default MIME registry.
func WithRegistry(reg *mime.Registry) Option {
	return func(r *Resolver) { r.mimes = reg }
}

// WithIndexFile sets the file served for directory requests. Empty disables
// directory indexes.
func WithIndexFile(name string) Option {
	return func(r *Resolver) { r.indexFile = name }
}

// WithHidden adds doublestar patterns that always resolve to 404. A pattern
// hides a path when it matches the path or any of its parent directories.
func WithHidden(patterns ...string) Option {
	return func(r *Resolver) { r.hidden = append(r.hidden, patterns...) }
}

// WithSniffing enables content sniffing for extensions the registry does
// not know.
func WithSniffing(enabled bool) Option {
	return func(r *Resolver) { r.sniff = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(r *Resolver) { r.metrics = metrics }
}

// NewResolver serves the OS directory root. Files are opened read-only and
// symlinks whose target leaves root are refused.
func NewResolver(root string, opts ...Option) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("sandbox root %s: %w", root, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("sandbox root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %s is not a directory", root)
	}

	fs := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), real))
	r := NewResolverFs(fs, opts...)
	r.realRoot = real
	return r, nil
}

// NewResolverFs serves an arbitrary afero filesystem; "/" of fs is the root.
func NewResolverFs(fs afero.Fs, opts ...Option) *Resolver {
	r := &Resolver{
		fs:        fs,
		mimes:     mime.Default(),
		indexFile: "index.html",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

// ResolveURI parses uri and resolves it. Unparseable URIs are not found.
func (r *Resolver) ResolveURI(uri string) Response {
	req, err := ParseRequest(uri)
	if err != nil {
		return r.notFound(uri)
	}
	return r.Resolve(req)
}

// Resolve reads the requested file. It re-reads storage on every call.
func (r *Resolver) Resolve(req Request) Response {
	vpath := req.VirtualPath()

	if r.isHidden(vpath) {
		r.logger.Debug("Hidden resource requested", zap.String("path", vpath))
		return r.notFound(vpath)
	}

	data, name, err := r.read(vpath)
	if err != nil {
		r.logger.Debug("Resource not found", zap.String("path", vpath), zap.Error(err))
		return r.notFound(vpath)
	}

	contentType := r.mimes.ForPath(name)
	if r.sniff && !r.mimes.Known(path.Ext(name)) {
		contentType = mimetype.Detect(data).String()
	}

	r.metrics.RecordResource(http.StatusOK)
	return Response{
		Status:      http.StatusOK,
		ContentType: contentType,
		Body:        data,
	}
}

func (r *Resolver) read(vpath string) ([]byte, string, error) {
	if strings.ContainsAny(vpath, "\\\x00") {
		return nil, "", errOutsideRoot
	}

	info, err := r.fs.Stat(vpath)
	if err != nil {
		return nil, "", err
	}
	if info.IsDir() {
		if r.indexFile == "" {
			return nil, "", fmt.Errorf("%s is a directory", vpath)
		}
		vpath = path.Join(vpath, r.indexFile)
		if info, err = r.fs.Stat(vpath); err != nil {
			return nil, "", err
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("%s is a directory", vpath)
		}
	}

	if err := r.guardSymlinks(vpath); err != nil {
		return nil, "", err
	}

	data, err := afero.ReadFile(r.fs, vpath)
	if err != nil {
		return nil, "", err
	}
	return data, vpath, nil
}

// guardSymlinks refuses files whose real location is outside the root.
func (r *Resolver) guardSymlinks(vpath string) error {
	if r.realRoot == "" {
		return nil
	}
	full := filepath.Join(r.realRoot, filepath.FromSlash(vpath))
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(r.realRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errOutsideRoot
	}
	return nil
}

func (r *Resolver) isHidden(vpath string) bool {
	if len(r.hidden) == 0 {
		return false
	}
	rel := strings.TrimPrefix(vpath, "/")
	if rel == "" {
		return false
	}

	segments := strings.Split(rel, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		for _, pattern := range r.hidden {
			if ok, _ := doublestar.Match(pattern, prefix); ok {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) notFound(vpath string) Response {
	r.metrics.RecordResource(http.StatusNotFound)
	return Response{
		Status:      http.StatusNotFound,
		ContentType: "text/plain",
		Body:        []byte("resource not found: " + vpath),
	}
}
