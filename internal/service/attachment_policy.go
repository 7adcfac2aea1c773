package service

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultMaxUploadBytes int64 = 10 << 20
	maxFilenameLength           = 255
)

// defaultMediaTypes maps each allowed extension to the media types accepted for it.
var defaultMediaTypes = map[string][]string{
	"jpeg": {"image/jpeg", "image/pjpeg"},
	"jpg":  {"image/jpeg", "image/pjpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
	"pdf":  {"application/pdf"},
	"doc":  {"application/msword", "application/x-ole-storage"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"txt":  {"text/plain"},
	"mp3":  {"audio/mpeg", "audio/mp3"},
	"mp4":  {"video/mp4", "audio/mp4"},
	"avi":  {"video/x-msvideo", "video/avi", "video/msvideo"},
}

var executableTypes = []string{
	"application/vnd.microsoft.portable-executable",
	"application/x-msdownload",
	"application/x-dosexec",
	"application/x-elf",
	"application/x-executable",
	"application/x-sharedlib",
	"application/x-object",
	"application/x-mach-binary",
	"application/x-java-applet",
	"text/x-shellscript",
}

// ValidatedFile is an upload that passed the policy and may be stored.
type ValidatedFile struct {
	Filename  string
	Ext       string
	MediaType string
	Data      []byte
}

func (f *ValidatedFile) Size() int64 {
	return int64(len(f.Data))
}

// AttachmentPolicy decides whether an upload may be stored. It never touches
// the blob store.
type AttachmentPolicy struct {
	maxBytes int64
	types    map[string][]string
}

// NewAttachmentPolicy restricts uploads to extensions, or to the built-in list
// when extensions is empty. A configured extension with no known media types
// accepts any non-executable content.
func NewAttachmentPolicy(maxBytes int64, extensions []string) *AttachmentPolicy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	types := defaultMediaTypes
	if len(extensions) > 0 {
		types = make(map[string][]string, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext == "" {
				continue
			}
			types[ext] = defaultMediaTypes[ext]
		}
	}
	return &AttachmentPolicy{maxBytes: maxBytes, types: types}
}

func (p *AttachmentPolicy) MaxBytes() int64 {
	return p.maxBytes
}

// Validate reads at most MaxBytes+1 bytes from body and checks size, extension,
// media type and content, in that order.
func (p *AttachmentPolicy) Validate(filename, declaredType string, body io.Reader) (*ValidatedFile, error) {
	name := cleanFilename(filename)
	if name == "" || body == nil {
		return nil, invalidInput("file is required")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(body, p.maxBytes+1)); err != nil {
		return nil, classify(err, "read upload")
	}
	if int64(buf.Len()) > p.maxBytes {
		return nil, &Error{Kind: KindPayloadTooLarge, Message: fmt.Sprintf("file exceeds the %d byte limit", p.maxBytes)}
	}
	if buf.Len() == 0 {
		return nil, invalidInput("file is empty")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	allowed, ok := p.types[ext]
	if ext == "" || !ok {
		return nil, unsupported("file extension is not allowed")
	}

	sniffed := mimetype.Detect(buf.Bytes())
	if isExecutable(sniffed) {
		return nil, unsupported("executable content is not allowed")
	}

	mediaType, err := resolveMediaType(declaredType, sniffed, allowed)
	if err != nil {
		return nil, err
	}

	return &ValidatedFile{
		Filename:  name,
		Ext:       "." + ext,
		MediaType: mediaType,
		Data:      buf.Bytes(),
	}, nil
}

// resolveMediaType trusts a specific declared type when it is allowed for the
// extension, and falls back to the sniffed type otherwise.
func resolveMediaType(declared string, sniffed *mimetype.MIME, allowed []string) (string, error) {
	base := baseMediaType(declared)
	if !isGenericType(base) {
		if len(allowed) == 0 || containsType(allowed, base) {
			return base, nil
		}
		return "", unsupported("file type does not match its extension")
	}

	for m := sniffed; m != nil; m = m.Parent() {
		candidate := baseMediaType(m.String())
		if isGenericType(candidate) {
			break
		}
		if len(allowed) == 0 || containsType(allowed, candidate) {
			return candidate, nil
		}
	}
	return "", unsupported("file content does not match its extension")
}

func isExecutable(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if containsType(executableTypes, baseMediaType(m.String())) {
			return true
		}
	}
	return false
}

func isGenericType(t string) bool {
	return t == "" || t == "application/octet-stream" || t == "binary/octet-stream"
}

func baseMediaType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(t); err == nil {
		return parsed
	}
	return strings.ToLower(t)
}

func containsType(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// cleanFilename keeps only the final path element of a client-supplied name.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameLength {
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	return name
}

func unsupported(message string) error {
	return &Error{Kind: KindUnsupportedMediaType, Message: message}
}
