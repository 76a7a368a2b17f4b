package webui

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// sniffLen covers filetype's matchers, including the OOXML ones that look
// past the first ZIP entry.
const sniffLen = 8192

var (
	errBadExtension    = errors.New("invalid file type")
	errContentMismatch = errors.New("file content does not match its extension")
)

// allowedExtension reports the upload's lower-cased extension when it is one
// the service accepts. ".xls" passes here and is rejected by the pipeline
// with a dedicated message.
func allowedExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx", ".xls", ".csv":
		return ext, nil
	}
	return "", errBadExtension
}

// checkContent compares the leading bytes of an upload with its extension.
func checkContent(ext string, head []byte) error {
	if len(head) == 0 {
		return errContentMismatch
	}
	switch ext {
	case ".xlsx":
		if filetype.Is(head, "xlsx") || filetype.Is(head, "zip") {
			return nil
		}
	case ".xls":
		if filetype.Is(head, "xls") {
			return nil
		}
	case ".csv":
		kind, _ := filetype.Match(head)
		if kind == filetype.Unknown && bytes.IndexByte(head, 0) < 0 {
			return nil
		}
	}
	return errContentMismatch
}

// sniffFile runs checkContent on the file at path.
func sniffFile(path, ext string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	return checkContent(ext, head[:n])
}
