package fileops

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// osdbHashChunkSize is the size of the chunk read from the start and end of the file.
	osdbHashChunkSize = 65536 // 64 * 1024

	// OSDbHashName is the key the hash is stored under on a video.
	OSDbHashName = "opensubtitles"
)

// checksumBuffer calculates the sum of 64-bit little-endian integers in the buffer.
func checksumBuffer(buf []byte) (sum uint64) {
	for i := 0; i+8 <= len(buf); i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return
}

// CalculateOSDbHash calculates the OpenSubtitles movie hash of a video file:
// the file size plus the 64-bit sums of its first and last 64 KiB.
// See http://trac.opensubtitles.org/projects/opensubtitles/wiki/HashSourceCodes
func CalculateOSDbHash(filePath string) (hash string, byteSize int64, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		err = fmt.Errorf("failed to open file for OSDb hashing '%s': %w", filePath, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat file '%s': %w", filePath, err)
		return
	}
	byteSize = stat.Size()
	hash, err = OSDbHash(file, byteSize)
	if err != nil {
		err = fmt.Errorf("'%s': %w", filePath, err)
	}
	return
}

// OSDbHash hashes size bytes readable from r.
func OSDbHash(r io.ReaderAt, size int64) (string, error) {
	if size < osdbHashChunkSize*2 {
		return "", fmt.Errorf("file is too small for OSDb hashing (size: %d)", size)
	}

	startBuf := make([]byte, osdbHashChunkSize)
	if _, err := r.ReadAt(startBuf, 0); err != nil {
		return "", fmt.Errorf("failed to read start chunk: %w", err)
	}
	endBuf := make([]byte, osdbHashChunkSize)
	if _, err := r.ReadAt(endBuf, size-osdbHashChunkSize); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read end chunk: %w", err)
	}

	// uint64 overflow is part of the algorithm.
	finalHash := uint64(size) + checksumBuffer(startBuf) + checksumBuffer(endBuf)
	return fmt.Sprintf("%016x", finalHash), nil
}
