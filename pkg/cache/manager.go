// Package cache persists transform output on disk so an incremental
// build only re-runs pkg/transform on files whose content actually
// changed, rather than on every path a watch event names.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	cacheVersion     = "v1"
	metadataBucket   = "metadata"
	modulesBucket    = "transforms"
	fileHashesBucket = "file_hashes"
	defaultCacheDir  = ".metro-cache"
)

// CacheStats represents cache statistics
type CacheStats struct {
	ModuleCount int
	CacheHits   int64
	CacheMisses int64
	CacheSize   int64 // Total bytes
	HitRate     float64
	LastUpdated time.Time
}

// CachedTransform wraps a transform result with the metadata needed to
// decide whether it is still valid for its file.
type CachedTransform struct {
	Result      interface{} // graph.TransformResult, stored as JSON
	FileHash    string
	CachedAt    time.Time
	FileModTime time.Time
}

// Manager handles persistent caching of transform results, keyed by
// file path and invalidated by content hash.
type Manager struct {
	db       *bolt.DB
	root     string
	cacheDir string
	hits     int64
	misses   int64
}

// NewManager creates a new cache manager
func NewManager(root string) (*Manager, error) {
	cacheDir := filepath.Join(root, defaultCacheDir)

	// Create cache directory if it doesn't exist
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Open BoltDB database
	dbPath := filepath.Join(cacheDir, "modules.db")
	db, err := bolt.Open(dbPath, 0644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Initialize buckets
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(modulesBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(fileHashesBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache buckets: %w", err)
	}

	manager := &Manager{
		db:       db,
		root:     root,
		cacheDir: cacheDir,
	}

	// Store cache version
	if err := manager.setMetadata("version", cacheVersion); err != nil {
		db.Close()
		return nil, err
	}

	return manager, nil
}

// Get retrieves a cached transform result if it's still valid for
// filePath's current content, returned as JSON bytes for the caller to
// unmarshal into a graph.TransformResult. Both the stored content hash
// and mtime must match filePath's current state: mtime alone is not
// trusted because some filesystems round it to one-second resolution,
// which would let a same-second rewrite slip past a mtime-only check.
func (m *Manager) Get(filePath string) ([]byte, bool) {
	fp, err := m.fingerprint(filePath)
	if err != nil {
		m.misses++
		return nil, false
	}

	var cached CachedTransform
	err = m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(modulesBucket)).Get([]byte(filePath))
		if data == nil {
			return fmt.Errorf("not found")
		}
		return json.Unmarshal(data, &cached)
	})
	if err != nil {
		m.misses++
		return nil, false
	}

	if cached.FileHash != fp.hash || !cached.FileModTime.Equal(fp.modTime) {
		m.misses++
		return nil, false
	}

	resultBytes, err := json.Marshal(cached.Result)
	if err != nil {
		m.misses++
		return nil, false
	}

	m.hits++
	return resultBytes, true
}

// Set stores a transform result in the cache, keyed by filePath and
// its current content hash. result must be JSON-serializable.
func (m *Manager) Set(filePath string, result interface{}) error {
	fp, err := m.fingerprint(filePath)
	if err != nil {
		return fmt.Errorf("failed to fingerprint file: %w", err)
	}

	cached := CachedTransform{
		Result:      result,
		FileHash:    fp.hash,
		CachedAt:    time.Now(),
		FileModTime: fp.modTime,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to serialize transform result: %w", err)
	}

	return m.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(modulesBucket)).Put([]byte(filePath), data); err != nil {
			return err
		}
		// Kept alongside the full record so VerifyIntegrity can spot a
		// desynced index without unmarshaling every transform result.
		return tx.Bucket([]byte(fileHashesBucket)).Put([]byte(filePath), []byte(fp.hash))
	})
}

// VerifyIntegrity cross-checks every entry's hash-index record against
// the hash embedded in its full transform record, returning how many
// entries it checked and how many disagreed. A mismatch means the two
// buckets fell out of sync — e.g. a killed process between the two
// Put calls in Set — and the caller should treat the cache as
// unreliable until cleared.
func (m *Manager) VerifyIntegrity() (checked, mismatched int, err error) {
	err = m.db.View(func(tx *bolt.Tx) error {
		modules := tx.Bucket([]byte(modulesBucket))
		hashes := tx.Bucket([]byte(fileHashesBucket))
		cursor := modules.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			checked++
			var cached CachedTransform
			if err := json.Unmarshal(v, &cached); err != nil {
				mismatched++
				continue
			}
			if indexed := hashes.Get(k); string(indexed) != cached.FileHash {
				mismatched++
			}
		}
		return nil
	})
	return checked, mismatched, err
}

// Invalidate removes a module from the cache
func (m *Manager) Invalidate(filePath string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modulesBucket))
		if err := bucket.Delete([]byte(filePath)); err != nil {
			return err
		}

		hashBucket := tx.Bucket([]byte(fileHashesBucket))
		return hashBucket.Delete([]byte(filePath))
	})
}

// Clear removes all cached modules
func (m *Manager) Clear() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		// Delete and recreate buckets
		if err := tx.DeleteBucket([]byte(modulesBucket)); err != nil {
			// Ignore if bucket doesn't exist
			if err.Error() != "bucket not found" {
				return err
			}
		}
		if err := tx.DeleteBucket([]byte(fileHashesBucket)); err != nil {
			// Ignore if bucket doesn't exist
			if err.Error() != "bucket not found" {
				return err
			}
		}

		if _, err := tx.CreateBucket([]byte(modulesBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucket([]byte(fileHashesBucket)); err != nil {
			return err
		}

		return nil
	})
}

// Stats returns cache statistics
func (m *Manager) Stats() (CacheStats, error) {
	stats := CacheStats{
		CacheHits:   m.hits,
		CacheMisses: m.misses,
	}

	// Calculate hit rate
	total := m.hits + m.misses
	if total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}

	// Count modules and calculate size
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modulesBucket))

		stats.ModuleCount = bucket.Stats().KeyN

		// Calculate total size
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			stats.CacheSize += int64(len(v))
		}

		return nil
	})

	if err != nil {
		return stats, err
	}

	stats.LastUpdated = time.Now()
	return stats, nil
}

// Close closes the cache database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// fileFingerprint is filePath's identity at a point in time: its
// content hash plus the mtime observed alongside it, so Get and Set
// agree on exactly what "unchanged" means for a given file.
type fileFingerprint struct {
	hash    string
	modTime time.Time
}

func (m *Manager) fingerprint(filePath string) (fileFingerprint, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return fileFingerprint{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fileFingerprint{}, err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileFingerprint{}, err
	}

	return fileFingerprint{hash: hex.EncodeToString(hash.Sum(nil)), modTime: info.ModTime()}, nil
}

// PruneOlderThan removes every cache entry last written before
// cutoff, regardless of whether its file hash is still valid. A long-
// running watch session otherwise keeps every transform result it has
// ever produced, including ones for files deleted or renamed away
// since; this bounds the cache to recently active files. It returns
// the number of entries removed.
func (m *Manager) PruneOlderThan(cutoff time.Time) (int, error) {
	var stale [][]byte
	err := m.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(modulesBucket)).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var cached CachedTransform
			if err := json.Unmarshal(v, &cached); err != nil {
				continue
			}
			if cached.CachedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = m.db.Update(func(tx *bolt.Tx) error {
		modules := tx.Bucket([]byte(modulesBucket))
		hashes := tx.Bucket([]byte(fileHashesBucket))
		for _, key := range stale {
			if err := modules.Delete(key); err != nil {
				return err
			}
			if err := hashes.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// setMetadata stores metadata in the cache
func (m *Manager) setMetadata(key, value string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metadataBucket))
		return bucket.Put([]byte(key), []byte(value))
	})
}

// IsEnabled checks if caching is enabled (database is open)
func (m *Manager) IsEnabled() bool {
	return m.db != nil
}
