// Package journal persists fixes as line-delimited JSON records to a
// rotating set of files on removable storage. Storage absence is never
// fatal: the journal just marks itself unavailable and every write
// becomes a no-op.
package journal

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/gps"
)

const (
	maxFileSize       = 10 * 1024 * 1024 // rotate past 10 MB
	maxRecordsPerFile = 10000            // or past 10000 records
	maxNameCollisions = 100

	// DefaultPrefix is the journal filename prefix.
	DefaultPrefix = "gps_"

	fileExtension = ".json"
)

// Journal owns the active log file. It is the sole owner of the
// underlying handle; nothing else closes or writes it.
type Journal struct {
	dir    string
	prefix string

	available   bool
	file        *os.File
	fileCreated bool
	fileName    string
	fileSize    int64
	records     uint32
	deviceID    string // hex hardware address, fixed across rotations
}

// New creates a journal writing under dir with the given filename prefix.
// An empty prefix selects DefaultPrefix.
func New(dir, prefix string) *Journal {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Journal{dir: dir, prefix: prefix}
}

// Initialize mounts the storage medium. Disabled or absent storage is not
// an error: the journal reports success and stays unavailable for the
// process lifetime, with no remount attempts.
func (j *Journal) Initialize(enable bool) error {
	if !enable {
		log.Println("journal: storage disabled")
		return nil
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		log.Printf("journal: storage unavailable (%v), persistence disabled", err)
		return nil
	}

	j.available = true
	log.Printf("journal: storage mounted at %s, waiting for first valid fix", j.dir)
	return nil
}

// Available reports whether the storage medium is usable.
func (j *Journal) Available() bool {
	return j.available
}

// WriteRecord appends one record for the fix. The first file is created
// lazily on the first valid fix; until then invalid fixes are dropped
// silently. Rotation is checked before the write, so a file that already
// crossed a threshold is closed and the pending record opens the next
// one. Each record is flushed immediately so at most the line in flight
// is lost on abrupt power loss.
func (j *Journal) WriteRecord(fix gps.Fix, deviceID string, seq uint32) error {
	if !j.available {
		return nil
	}

	if !j.fileCreated {
		if !fix.Valid {
			return nil
		}
		if err := j.createFile(deviceID, fix); err != nil {
			return err
		}
		j.fileCreated = true
		j.deviceID = deviceID
		log.Printf("journal: created %s", j.fileName)
	}

	// Nothing to append to once the owning journal closed its handle.
	if j.file == nil {
		return nil
	}

	if j.needsRotation() {
		if err := j.rotate(fix); err != nil {
			return err
		}
	}

	line, err := json.Marshal(NewRecord(fix, seq))
	if err != nil {
		return fmt.Errorf("journal: marshal record: %w", err)
	}
	line = append(line, '\n')

	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("journal: write %s: %w", j.fileName, err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("journal: sync %s: %w", j.fileName, err)
	}

	// Size comes from the file itself, count from our own counter.
	if info, err := j.file.Stat(); err == nil {
		j.fileSize = info.Size()
	}
	j.records++
	return nil
}

// CurrentFileName returns the active file path, or "" before the first
// valid fix.
func (j *Journal) CurrentFileName() string {
	return j.fileName
}

// RecordCount returns how many records the active file holds.
func (j *Journal) RecordCount() uint32 {
	return j.records
}

// Close flushes and closes the active file. Closing an already-closed
// journal is a no-op.
func (j *Journal) Close() {
	if j.file == nil {
		return
	}
	j.file.Close()
	j.file = nil
	log.Printf("journal: closed %s (%d records, %d bytes)", j.fileName, j.records, j.fileSize)
}

func (j *Journal) needsRotation() bool {
	return j.fileSize >= maxFileSize || j.records >= maxRecordsPerFile
}

func (j *Journal) rotate(fix gps.Fix) error {
	log.Printf("journal: rotating after %d records, %d bytes", j.records, j.fileSize)
	j.Close()
	if err := j.createFile(j.deviceID, fix); err != nil {
		return err
	}
	log.Printf("journal: new file %s", j.fileName)
	return nil
}

// createFile opens a fresh file named from the device identity and the
// fix's calendar fields. Two files for the same device within the same
// second get distinct names via a bounded numeric suffix.
func (j *Journal) createFile(deviceID string, fix gps.Fix) error {
	if j.file != nil {
		j.Close()
	}

	stamp := fmt.Sprintf("%04d-%02d-%02d_%02d-%02d-%02d",
		fix.Year, fix.Month, fix.Day, fix.Hour, fix.Minute, fix.Second)

	name := filepath.Join(j.dir, j.prefix+deviceID+"_"+stamp+fileExtension)
	for suffix := 1; suffix < maxNameCollisions; suffix++ {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			break
		}
		name = filepath.Join(j.dir, fmt.Sprintf("%s%s_%s_%d%s",
			j.prefix, deviceID, stamp, suffix, fileExtension))
	}

	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: create %s: %w", name, err)
	}

	j.file = file
	j.fileName = name
	j.fileSize = 0
	j.records = 0
	return nil
}
