// Package resource implements the res:// virtual resource protocol.
//
// A URI res://<host><path> resolves to <root>/<host>/<path>. Both segments
// are cleaned against "/" before touching storage, so traversal attempts
// land inside the root and simply miss. Every failure (missing file,
// directory without index, hidden path, symlink escaping an OS root) is a
// 404 with a text/plain body naming the virtual path. Successful reads are
// 200 with the content type from the mime registry.
//
// Storage is an afero.Fs. NewResolver wraps an OS directory in a read-only
// base-path filesystem; NewResolverFs accepts any filesystem and is what the
// tests use with an in-memory one. List enumerates what a root serves.
package resource
