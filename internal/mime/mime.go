// Package mime maps file extensions to content types for the resource
// protocol.
//
// The default table is built once on first use and never mutated afterwards.
// Lookups of unknown or missing extensions return exactly DefaultType.
package mime

import (
	"path"
	"strings"
	"sync"
)

// DefaultType is returned for every extension the table does not know.
const DefaultType = "application/octet-stream"

// Registry is an immutable extension → content type table.
type Registry struct {
	types map[string]string
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the shared registry, building it on first call.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{types: builtinTypes()}
	})
	return defaultRegistry
}

// NewRegistry returns a registry holding the built-in table with overrides
// applied on top. Override keys are normalised like lookup keys.
func NewRegistry(overrides map[string]string) *Registry {
	types := builtinTypes()
	for ext, contentType := range overrides {
		ext = normalize(ext)
		if ext == "" || contentType == "" {
			continue
		}
		types[ext] = contentType
	}
	return &Registry{types: types}
}

// Lookup returns the content type for ext. A leading dot and letter case are
// ignored.
func (r *Registry) Lookup(ext string) string {
	if ct, ok := r.types[normalize(ext)]; ok {
		return ct
	}
	return DefaultType
}

// Known reports whether ext has an entry in the table.
func (r *Registry) Known(ext string) bool {
	_, ok := r.types[normalize(ext)]
	return ok
}

// ForPath returns the content type for the extension of the last element of
// a slash-separated path.
func (r *Registry) ForPath(p string) string {
	return r.Lookup(path.Ext(p))
}

// Len returns the number of known extensions.
func (r *Registry) Len() int {
	return len(r.types)
}

// Lookup uses the default registry.
func Lookup(ext string) string {
	return Default().Lookup(ext)
}

// ForPath uses the default registry.
func ForPath(p string) string {
	return Default().ForPath(p)
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func builtinTypes() map[string]string {
	return map[string]string{
		"aac":    "audio/aac",
		"abw":    "application/x-abiword",
		"apng":   "image/apng",
		"arc":    "application/x-freearc",
		"avif":   "image/avif",
		"avi":    "video/x-msvideo",
		"azw":    "application/vnd.amazon.ebook",
		"bin":    "application/octet-stream",
		"bmp":    "image/bmp",
		"bz":     "application/x-bzip",
		"bz2":    "application/x-bzip2",
		"cda":    "application/x-cdf",
		"cjs":    "text/javascript",
		"csh":    "application/x-csh",
		"css":    "text/css",
		"csv":    "text/csv",
		"doc":    "application/msword",
		"docx":   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"eot":    "application/vnd.ms-fontobject",
		"epub":   "application/epub+zip",
		"gz":     "application/gzip",
		"gif":    "image/gif",
		"html":   "text/html",
		"htm":    "text/html",
		"ico":    "image/vnd.microsoft.icon",
		"ics":    "text/calendar",
		"jar":    "application/java-archive",
		"jpeg":   "image/jpeg",
		"jpg":    "image/jpeg",
		"js":     "text/javascript",
		"json":   "application/json",
		"jsonld": "application/ld+json",
		"midi":   "audio/midi",
		"mid":    "audio/midi",
		"mjs":    "text/javascript",
		"mp3":    "audio/mpeg",
		"mp4":    "video/mp4",
		"mpeg":   "video/mpeg",
		"mpkg":   "application/vnd.apple.installer+xml",
		"odp":    "application/vnd.oasis.opendocument.presentation",
		"ods":    "application/vnd.oasis.opendocument.spreadsheet",
		"odt":    "application/vnd.oasis.opendocument.text",
		"oga":    "audio/ogg",
		"ogv":    "video/ogg",
		"ogx":    "application/ogg",
		"opus":   "audio/ogg",
		"otf":    "font/otf",
		"png":    "image/png",
		"pdf":    "application/pdf",
		"php":    "application/x-httpd-php",
		"ppt":    "application/vnd.ms-powerpoint",
		"pptx":   "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"rar":    "application/vnd.rar",
		"rtf":    "application/rtf",
		"sh":     "application/x-sh",
		"svg":    "image/svg+xml",
		"tar":    "application/x-tar",
		"tif":    "image/tiff",
		"tiff":   "image/tiff",
		"ts":     "video/mp2t",
		"ttf":    "font/ttf",
		"txt":    "text/plain",
		"vsd":    "application/vnd.visio",
		"wav":    "audio/wav",
		"weba":   "audio/webm",
		"webm":   "video/webm",
		"webp":   "image/webp",
		"woff":   "font/woff",
		"woff2":  "font/woff2",
		"xhtml":  "application/xhtml+xml",
		"xls":    "application/vnd.ms-excel",
		"xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"xml":    "application/xml",
		"xul":    "application/vnd.mozilla.xul+xml",
		"zip":    "application/zip",
		"3gp":    "video/3gpp",
		"3g2":    "video/3gpp2",
		"7z":     "application/x-7z-compressed",

		// not in the common web table
		"map":  "application/json",
		"md":   "text/markdown",
		"wasm": "application/wasm",
		"ogg":  "audio/ogg",
		"m4a":  "audio/x-m4a",
		"mov":  "video/quicktime",
	}
}
