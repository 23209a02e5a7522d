package models

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"time"
)

// CacheEntry remembers the references extracted from one file at one content hash.
type CacheEntry struct {
	FilePath   string         `json:"file_path"`
	ModTime    time.Time      `json:"mod_time"`
	Size       int64          `json:"size"`
	FileHash   string         `json:"file_hash"`
	References []RawReference `json:"references"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewCacheEntry(filePath string, refs []RawReference) (*CacheEntry, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	hash, err := CalculateFileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash for file %s: %w", filePath, err)
	}

	return &CacheEntry{
		FilePath:   filePath,
		ModTime:    stat.ModTime(),
		Size:       stat.Size(),
		FileHash:   hash,
		References: refs,
		CreatedAt:  time.Now(),
	}, nil
}

// IsValid reports whether the file still has the content the entry was built from.
// Unchanged size and modtime are trusted without hashing.
func (ce *CacheEntry) IsValid() (bool, error) {
	stat, err := os.Stat(ce.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", ce.FilePath, err)
	}

	if stat.Size() == ce.Size && stat.ModTime().Equal(ce.ModTime) {
		return true, nil
	}

	currentHash, err := CalculateFileHash(ce.FilePath)
	if err != nil {
		return false, fmt.Errorf("failed to calculate current hash for file %s: %w", ce.FilePath, err)
	}

	if currentHash == ce.FileHash {
		ce.ModTime = stat.ModTime()
		ce.Size = stat.Size()
		return true, nil
	}

	return false, nil
}

func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
