package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"time"
)

// Tags carry the provenance metadata stamped into the output file. The
// map items land in the GDAL_METADATA XML block; the named fields map to
// their dedicated baseline TIFF tags.
type Tags struct {
	DateTime     time.Time
	DocumentName string
	Software     string
	Metadata     map[string]string
}

// TIFF field types used by the encoder.
const (
	typeASCII  = 2
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// Baseline and extension tag IDs.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagDocumentName    = 269
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagSoftware        = 305
	tagDateTime        = 306
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
	tagGeoASCIIParams  = 34737
	tagGDALMetadata    = 42112
	tagGDALNoData      = 42113
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32 // inline value, or assigned offset for out-of-line data
	data  []byte // payloads larger than 4 bytes
}

// WriteGeoTIFF encodes the surface as a single-band, single-strip,
// little-endian float32 GeoTIFF with NaN as the nodata value. The file is
// self-describing: pixel scale, a northwest tiepoint, GeoKeys naming the
// projected CRS, and GDAL metadata travel alongside the band.
func WriteGeoTIFF(path string, s *Surface, tags Tags) error {
	rows, cols := s.Rows(), s.Cols()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("write geotiff %s: empty surface", path)
	}

	pixels := make([]byte, rows*cols*4)
	for r, row := range s.Data {
		for c, v := range row {
			binary.LittleEndian.PutUint32(pixels[(r*cols+c)*4:], math.Float32bits(float32(v)))
		}
	}

	entries := []ifdEntry{
		{tag: tagImageWidth, typ: typeLong, count: 1, value: uint32(cols)},
		{tag: tagImageLength, typ: typeLong, count: 1, value: uint32(rows)},
		{tag: tagBitsPerSample, typ: typeShort, count: 1, value: 32},
		{tag: tagCompression, typ: typeShort, count: 1, value: 1},
		{tag: tagPhotometric, typ: typeShort, count: 1, value: 1},
		{tag: tagStripOffsets, typ: typeLong, count: 1}, // patched below
		{tag: tagSamplesPerPixel, typ: typeShort, count: 1, value: 1},
		{tag: tagRowsPerStrip, typ: typeLong, count: 1, value: uint32(rows)},
		{tag: tagStripByteCounts, typ: typeLong, count: 1, value: uint32(len(pixels))},
		{tag: tagSampleFormat, typ: typeShort, count: 1, value: 3}, // IEEE float
		asciiEntry(tagGDALNoData, "nan"),
		doubleEntry(tagModelPixelScale, []float64{s.Transform.XSize, -s.Transform.YSize, 0}),
		doubleEntry(tagModelTiepoint, []float64{0, 0, 0, s.Transform.XOrigin, s.Transform.YOrigin, 0}),
	}

	citation := s.Proj4
	entries = append(entries,
		shortEntry(tagGeoKeyDirectory, geoKeys(s.EPSG, len(citation)+1)),
		asciiEntry(tagGeoASCIIParams, citation),
	)

	if tags.DocumentName != "" {
		entries = append(entries, asciiEntry(tagDocumentName, tags.DocumentName))
	}
	if tags.Software != "" {
		entries = append(entries, asciiEntry(tagSoftware, tags.Software))
	}
	if !tags.DateTime.IsZero() {
		entries = append(entries, asciiEntry(tagDateTime, tags.DateTime.Format("2006:01:02 15:04:05")))
	}
	if len(tags.Metadata) > 0 {
		entries = append(entries, asciiEntry(tagGDALMetadata, gdalMetadataXML(tags.Metadata)))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	// Layout: header, IFD, out-of-line tag data, pixel strip.
	const headerSize = 8
	ifdSize := 2 + 12*len(entries) + 4
	offset := uint32(headerSize + ifdSize)
	for i := range entries {
		if entries[i].data == nil {
			continue
		}
		entries[i].value = offset
		offset += uint32(len(entries[i].data))
		if offset%2 == 1 {
			offset++
		}
	}
	stripOffset := offset
	for i := range entries {
		if entries[i].tag == tagStripOffsets {
			entries[i].value = stripOffset
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	writeU16(&buf, 42)
	writeU32(&buf, headerSize)

	writeU16(&buf, uint16(len(entries)))
	for _, e := range entries {
		writeU16(&buf, e.tag)
		writeU16(&buf, e.typ)
		writeU32(&buf, e.count)
		writeU32(&buf, e.value)
	}
	writeU32(&buf, 0) // no next IFD

	for _, e := range entries {
		if e.data == nil {
			continue
		}
		buf.Write(e.data)
		if buf.Len()%2 == 1 {
			buf.WriteByte(0)
		}
	}
	buf.Write(pixels)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write geotiff %s: %w", path, err)
	}
	return nil
}

// geoKeys builds the GeoKeyDirectory: projected model, area pixels, the
// EPSG code when it fits a short, and a citation pointing at the ASCII
// params. ESRI codes above the short range are marked user-defined and
// described only by the citation.
func geoKeys(epsg, citationLen int) []uint16 {
	cs := uint16(32767)
	if epsg > 0 && epsg <= math.MaxUint16 {
		cs = uint16(epsg)
	}
	return []uint16{
		1, 1, 0, 4, // version, revision, minor, key count
		1024, 0, 1, 1, // GTModelType: projected
		1025, 0, 1, 1, // GTRasterType: pixel is area
		1026, 34737, uint16(citationLen), 0, // GTCitation in GeoASCIIParams
		3072, 0, 1, cs, // ProjectedCSType
	}
}

func gdalMetadataXML(items map[string]string) string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b bytes.Buffer
	b.WriteString("<GDALMetadata>\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  <Item name=\"%s\">%s</Item>\n", k, items[k])
	}
	b.WriteString("</GDALMetadata>\n")
	return b.String()
}

func asciiEntry(tag uint16, s string) ifdEntry {
	payload := append([]byte(s), 0)
	e := ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(payload))}
	if len(payload) <= 4 {
		var v [4]byte
		copy(v[:], payload)
		e.value = binary.LittleEndian.Uint32(v[:])
	} else {
		e.data = payload
	}
	return e
}

func shortEntry(tag uint16, vals []uint16) ifdEntry {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	e := ifdEntry{tag: tag, typ: typeShort, count: uint32(len(vals))}
	if len(data) <= 4 {
		var v [4]byte
		copy(v[:], data)
		e.value = binary.LittleEndian.Uint32(v[:])
	} else {
		e.data = data
	}
	return e
}

func doubleEntry(tag uint16, vals []float64) ifdEntry {
	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[8*i:], math.Float64bits(v))
	}
	return ifdEntry{tag: tag, typ: typeDouble, count: uint32(len(vals)), data: data}
}

func writeU16(b *bytes.Buffer, v uint16) {
	var t [2]byte
	binary.LittleEndian.PutUint16(t[:], v)
	b.Write(t[:])
}

func writeU32(b *bytes.Buffer, v uint32) {
	var t [4]byte
	binary.LittleEndian.PutUint32(t[:], v)
	b.Write(t[:])
}
