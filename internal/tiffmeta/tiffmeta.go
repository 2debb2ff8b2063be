// Package tiffmeta reads and writes the DPI resolution tags the batch
// driver needs for scan-size-aware processing (SPEC_FULL §11: "DPI
// inference"). ExtractDPI/readRational are adapted from the teacher's
// internal/image/layer.go ExtractTIFFDPI/readTIFFRational, generalized from
// a single-purpose PCB-scan loader into a standalone tag reader plus a
// writer for the batch driver's output TIFFs.
package tiffmeta

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	tagXResolution    = 282
	tagYResolution    = 283
	tagResolutionUnit = 296
)

// ExtractDPI reads the effective DPI (preferring X resolution) from a TIFF
// file's IFD tags, converting from resolution-per-cm to resolution-per-inch
// when ResolutionUnit indicates centimeters.
func ExtractDPI(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return extractDPI(f)
}

func extractDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, fmt.Errorf("tiffmeta: reading header: %w", err)
	}

	var order binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		order = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("tiffmeta: not a TIFF file (bad byte-order mark)")
	}

	ifdOffset := order.Uint32(header[4:8])
	if _, err := r.Seek(int64(ifdOffset), io.SeekStart); err != nil {
		return 0, err
	}

	var numEntries uint16
	if err := binary.Read(r, order, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var unit uint16 = 2 // default: inches
	entry := make([]byte, 12)
	for i := uint16(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		switch tag {
		case tagXResolution, tagYResolution:
			offset := order.Uint32(entry[8:12])
			pos, _ := r.Seek(0, io.SeekCurrent)
			if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
				return 0, err
			}
			num, den, err := readRational(r, order)
			if err != nil {
				return 0, err
			}
			val := 0.0
			if den != 0 {
				val = float64(num) / float64(den)
			}
			if tag == tagXResolution {
				xRes = val
			} else {
				yRes = val
			}
			if _, err := r.Seek(pos, io.SeekStart); err != nil {
				return 0, err
			}
		case tagResolutionUnit:
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if unit == 3 { // centimeters
		dpi *= 2.54
	}
	return dpi, nil
}

func readRational(r io.Reader, order binary.ByteOrder) (num, den uint32, err error) {
	buf := make([]byte, 8)
	if _, err = io.ReadFull(r, buf); err != nil {
		return 0, 0, err
	}
	num = order.Uint32(buf[0:4])
	den = order.Uint32(buf[4:8])
	return num, den, nil
}

// WriteDPITag overwrites an existing TIFF file's XResolution/YResolution
// RATIONAL values in place with (dpi*1000)/1000, leaving every other tag
// (ResolutionUnit included) and the image data untouched. It requires the
// file to already carry XResolution/YResolution tags of type RATIONAL (as
// golang.org/x/image/tiff's encoder writes them by default; the batch
// driver sets no DPI at encode time) — WriteDPITag only patches values
// after the fact.
func WriteDPITag(path string, dpi float64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("tiffmeta: reading header: %w", err)
	}
	var order binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		order = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		order = binary.BigEndian
	default:
		return fmt.Errorf("tiffmeta: not a TIFF file (bad byte-order mark)")
	}
	ifdOffset := order.Uint32(header[4:8])
	if _, err := f.Seek(int64(ifdOffset), io.SeekStart); err != nil {
		return err
	}
	var numEntries uint16
	if err := binary.Read(f, order, &numEntries); err != nil {
		return err
	}

	entry := make([]byte, 12)
	rational := make([]byte, 8)
	order.PutUint32(rational[0:4], uint32(dpi*1000))
	order.PutUint32(rational[4:8], 1000)

	for i := uint16(0); i < numEntries; i++ {
		entryPos, _ := f.Seek(0, io.SeekCurrent)
		if _, err := io.ReadFull(f, entry); err != nil {
			return err
		}
		tag := order.Uint16(entry[0:2])
		if tag != tagXResolution && tag != tagYResolution {
			continue
		}
		offset := order.Uint32(entry[8:12])
		if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
			return err
		}
		if _, err := f.Write(rational); err != nil {
			return err
		}
		if _, err := f.Seek(entryPos+12, io.SeekStart); err != nil {
			return err
		}
	}
	return nil
}
