package store

import (
	"crypto/sha1"
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"

	errorWrapper "github.com/pkg/errors"
)

// FileStore keeps one file per metadata URL under a base directory. File
// names are derived from the URL hash so any URL is a valid key.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errorWrapper.Wrap(err, "failed in creating backup directory")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(url string) (string, error) {
	data, err := ioutil.ReadFile(s.path(url))
	if err != nil {
		if os.IsNotExist(err) {
			return "", NoDocumentFound
		}
		return "", errorWrapper.Wrap(err, "failed in reading metadata backup")
	}
	return string(data), nil
}

func (s *FileStore) Set(url, document string) error {
	if err := ioutil.WriteFile(s.path(url), []byte(document), 0644); err != nil {
		return errorWrapper.Wrap(err, "failed in writing metadata backup")
	}
	return nil
}

func (s *FileStore) path(url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".xml")
}
