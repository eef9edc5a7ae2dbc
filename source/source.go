// Package source resolves image and video references and loads their bytes.
//
// A reference is a local path, a file:// URL, an http(s) URL or a streaming
// URL. Video references are recognized from their container suffix or
// streaming scheme and are never fetched; everything else is read fully into
// memory once and classified by content.
package source

import (
	"bytes"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Errors returned while resolving and fetching.
var (
	// ErrUnreachable is returned when a file or URL cannot be read.
	ErrUnreachable = errors.New("source: unreachable")

	// ErrEmpty is returned for empty references and empty content.
	ErrEmpty = errors.New("source: empty")

	// ErrUnsupported is returned for schemes the fetcher does not handle.
	ErrUnsupported = errors.New("source: unsupported reference")

	// ErrTooLarge is returned when content exceeds the fetch limit.
	ErrTooLarge = errors.New("source: content too large")
)

// Class is the content class of fetched bytes.
type Class uint8

const (
	// Unknown content is not recognized as an image.
	Unknown Class = iota

	// Raster content is a bitmap format handled by the codec package.
	Raster

	// Vector content is an SVG document.
	Vector
)

// String returns a string representation of the class.
func (c Class) String() string {
	switch c {
	case Raster:
		return "raster"
	case Vector:
		return "vector"
	default:
		return "unknown"
	}
}

// videoSuffixes lists container extensions played through the video adapter.
var videoSuffixes = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".mkv": true, ".webm": true,
	".avi": true, ".wmv": true, ".flv": true, ".mpg": true, ".mpeg": true,
	".ts": true, ".m2ts": true, ".3gp": true, ".ogv": true,
	".m3u8": true, ".mpd": true,
}

// liveSchemes are streaming protocols.
var liveSchemes = map[string]bool{
	"rtsp": true, "rtsps": true, "rtmp": true, "rtmps": true,
	"rtp": true, "udp": true, "srt": true, "mms": true, "mmsh": true,
}

// liveSuffixes are playlist formats of live HTTP streams.
var liveSuffixes = map[string]bool{".m3u8": true, ".mpd": true}

func split(ref string) (scheme, p string) {
	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) < 2 {
		// Windows drive letters parse as one-letter schemes.
		return "", ref
	}
	return strings.ToLower(u.Scheme), u.Path
}

// IsLive reports whether ref is a live stream: a streaming scheme or an HTTP
// playlist.
func IsLive(ref string) bool {
	scheme, p := split(ref)
	if liveSchemes[scheme] {
		return true
	}
	if scheme == "http" || scheme == "https" {
		return liveSuffixes[strings.ToLower(path.Ext(p))]
	}
	return false
}

// IsVideo reports whether ref is played as video rather than decoded as an
// image.
func IsVideo(ref string) bool {
	if IsLive(ref) {
		return true
	}
	_, p := split(ref)
	return videoSuffixes[strings.ToLower(path.Ext(filepath.ToSlash(p)))]
}

// IsRemote reports whether ref is fetched over HTTP.
func IsRemote(ref string) bool {
	scheme, _ := split(ref)
	return scheme == "http" || scheme == "https"
}

// Resolve returns the canonical form of ref: URLs are kept, file:// URLs and
// local paths become absolute cleaned paths. Different spellings of one file
// resolve to the same string.
func Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmpty
	}
	scheme, p := split(ref)
	switch scheme {
	case "":
		return filepath.Abs(ref)
	case "file":
		return filepath.Abs(filepath.FromSlash(p))
	default:
		return ref, nil
	}
}

// IsSVG reports whether data starts like an SVG document. Only the first
// kilobyte is inspected.
func IsSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	if !bytes.HasPrefix(head, []byte("<?xml")) && !bytes.HasPrefix(head, []byte("<!DOCTYPE")) && !bytes.HasPrefix(head, []byte("<!--")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

// Sniff classifies data and returns its MIME type when known.
func Sniff(data []byte) (Class, string) {
	if IsSVG(data) {
		return Vector, "image/svg+xml"
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return Unknown, ""
	}
	if filetype.IsImage(data) {
		return Raster, kind.MIME.Value
	}
	return Unknown, kind.MIME.Value
}
