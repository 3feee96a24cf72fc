package mediaio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceKind identifies the raw input shape of a Source.
type SourceKind int

const (
	SourcePath SourceKind = iota
	SourceBytes
	SourceReader
	SourceString
)

// Source is raw caller input. It is inspected once by Resolve; everything
// downstream works on the resulting MediaPayload.
type Source struct {
	kind SourceKind
	text string
	data []byte
	r    io.Reader
}

// FromPath creates a Source for a local file. Paths are never treated as
// remote-video URLs.
func FromPath(path string) Source { return Source{kind: SourcePath, text: path} }

// FromBytes creates a Source from an in-memory buffer.
func FromBytes(data []byte) Source { return Source{kind: SourceBytes, data: data} }

// FromReader creates a Source that is read to EOF on resolution.
func FromReader(r io.Reader) Source { return Source{kind: SourceReader, r: r} }

// FromString creates a Source from a string that is either a remote-video
// URL or a local path.
func FromString(s string) Source { return Source{kind: SourceString, text: s} }

// Kind returns the raw input shape.
func (s Source) Kind() SourceKind { return s.kind }

// IsZero reports whether s was never set.
func (s Source) IsZero() bool {
	return s.kind == SourcePath && s.text == "" && s.data == nil && s.r == nil
}

func (s Source) String() string {
	switch s.kind {
	case SourceBytes:
		return fmt.Sprintf("<%d bytes>", len(s.data))
	case SourceReader:
		return "<reader>"
	default:
		return s.text
	}
}

// extMIME is the static extension table. Unlisted extensions are OctetStream.
var extMIME = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
	".webp": "image/webp", ".gif": "image/gif", ".bmp": "image/bmp",
	".mp3": "audio/mp3", ".wav": "audio/wav", ".flac": "audio/flac",
	".aac": "audio/aac", ".ogg": "audio/ogg", ".m4a": "audio/mp4",
	".mp4": "video/mp4", ".mov": "video/quicktime", ".avi": "video/x-msvideo",
	".webm": "video/webm", ".mkv": "video/x-matroska",
	".pdf": "application/pdf", ".txt": "text/plain",
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".ogg": true, ".m4a": true,
}

// remoteVideoMarkers match the canonical watch link, the short link and the
// shorts link.
var remoteVideoMarkers = []string{"youtube.com/watch", "youtu.be/", "youtube.com/shorts"}

// MIMEForPath derives a mime type from the file extension.
func MIMEForPath(path string) string {
	if m, ok := extMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return OctetStream
}

// IsRemoteVideoURL reports whether s is one of the recognized video links.
func IsRemoteVideoURL(s string) bool {
	for _, m := range remoteVideoMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsAudioSource guesses whether src is audio from its extension. Bytes,
// readers and remote references are not audio.
func IsAudioSource(src Source) bool {
	if src.kind != SourcePath && src.kind != SourceString {
		return false
	}
	return audioExts[strings.ToLower(filepath.Ext(src.text))]
}

// Resolve loads src into a MediaPayload. Only the local-path case touches
// the filesystem; nothing here performs network I/O. A missing path yields
// a *ClassifiedError of kind KindNotFound.
func Resolve(src Source) (MediaPayload, error) {
	switch src.kind {
	case SourceBytes:
		return BytesPayload(src.data, OctetStream), nil
	case SourceReader:
		if src.r == nil {
			return MediaPayload{}, errors.New("nil reader source")
		}
		data, err := io.ReadAll(src.r)
		if err != nil {
			return MediaPayload{}, fmt.Errorf("failed to read source: %w", err)
		}
		return BytesPayload(data, OctetStream), nil
	case SourceString:
		if IsRemoteVideoURL(src.text) {
			return RemoteVideoPayload(src.text), nil
		}
	}
	return resolvePath(src.text)
}

func resolvePath(path string) (MediaPayload, error) {
	if path == "" {
		return MediaPayload{}, newClassified(KindNotFound, "resolve", fs.ErrNotExist, "File not found: (empty path)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MediaPayload{}, newClassified(KindNotFound, "resolve", err, "File not found: %s", path)
		}
		return MediaPayload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return BytesPayload(data, MIMEForPath(path)), nil
}
