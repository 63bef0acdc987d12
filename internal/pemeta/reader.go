package pemeta

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf16"

	goversion "github.com/hashicorp/go-version"

	dserrors "github.com/systmms/nugetrun/internal/errors"
)

// rtVersion is the resource type id of RT_VERSION entries.
const rtVersion = 16

// fixedFileInfoSignature marks the start of a VS_FIXEDFILEINFO block
// inside a version resource.
const fixedFileInfoSignature = 0xFEEF04BD

var errMalformedResource = fmt.Errorf("malformed resource directory")

// ReadVersionInfo extracts the embedded version metadata from the PE
// binary at path.
//
// The three recognized failure shapes are returned as typed
// MetadataError values (invalid PE signature, missing resource section,
// missing version resource); callers recover from those by assuming the
// default quirk set. Any other failure, such as the file not existing
// or being unreadable, is returned unchanged.
func ReadVersionInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		// Unknown cause. Masking it risks resolving quirks for the
		// wrong binary, so it propagates as-is.
		return nil, err
	}
	defer f.Close()

	pf, err := pe.NewFile(f)
	if err != nil {
		return nil, dserrors.MetadataError{Path: path, Code: dserrors.CodeInvalidSignature}
	}

	sect := pf.Section(".rsrc")
	if sect == nil {
		return nil, dserrors.MetadataError{Path: path, Code: dserrors.CodeNoResourceSection}
	}
	rsrc, err := sect.Data()
	if err != nil {
		return nil, err
	}

	blob, err := versionResource(rsrc, sect.VirtualAddress)
	if err != nil {
		return nil, dserrors.MetadataError{Path: path, Code: dserrors.CodeNoVersionResource}
	}

	fileV, prodV, err := fixedFileInfo(blob)
	if err != nil {
		return nil, dserrors.MetadataError{Path: path, Code: dserrors.CodeNoVersionResource}
	}

	info := &Info{
		FileVersion:    fileV,
		ProductVersion: prodV,
		Strings:        map[string]string{},
	}
	if s, ok := stringValue(blob, "ProductVersion"); ok {
		info.Strings["ProductVersion"] = s
	}
	return info, nil
}

type resourceEntry struct {
	id    uint32
	value uint32
}

const subdirectoryFlag = 0x80000000

// directoryEntries decodes the entries of the IMAGE_RESOURCE_DIRECTORY
// at dirOff within the raw .rsrc section data.
func directoryEntries(rsrc []byte, dirOff uint32) ([]resourceEntry, error) {
	if int(dirOff)+16 > len(rsrc) {
		return nil, errMalformedResource
	}
	named := binary.LittleEndian.Uint16(rsrc[dirOff+12:])
	ids := binary.LittleEndian.Uint16(rsrc[dirOff+14:])
	count := int(named) + int(ids)

	entries := make([]resourceEntry, 0, count)
	off := int(dirOff) + 16
	for i := 0; i < count; i++ {
		if off+8 > len(rsrc) {
			return nil, errMalformedResource
		}
		entries = append(entries, resourceEntry{
			id:    binary.LittleEndian.Uint32(rsrc[off:]),
			value: binary.LittleEndian.Uint32(rsrc[off+4:]),
		})
		off += 8
	}
	return entries, nil
}

// versionResource walks the three-level resource directory (type, name,
// language) and returns the raw bytes of the first RT_VERSION resource.
func versionResource(rsrc []byte, sectionRVA uint32) ([]byte, error) {
	root, err := directoryEntries(rsrc, 0)
	if err != nil {
		return nil, err
	}

	var nameDir uint32
	found := false
	for _, e := range root {
		if e.id == rtVersion && e.value&subdirectoryFlag != 0 {
			nameDir = e.value &^ subdirectoryFlag
			found = true
			break
		}
	}
	if !found {
		return nil, errMalformedResource
	}

	names, err := directoryEntries(rsrc, nameDir)
	if err != nil || len(names) == 0 || names[0].value&subdirectoryFlag == 0 {
		return nil, errMalformedResource
	}

	langs, err := directoryEntries(rsrc, names[0].value&^subdirectoryFlag)
	if err != nil || len(langs) == 0 || langs[0].value&subdirectoryFlag != 0 {
		return nil, errMalformedResource
	}

	dataOff := langs[0].value
	if int(dataOff)+16 > len(rsrc) {
		return nil, errMalformedResource
	}
	dataRVA := binary.LittleEndian.Uint32(rsrc[dataOff:])
	size := binary.LittleEndian.Uint32(rsrc[dataOff+4:])

	if dataRVA < sectionRVA {
		return nil, errMalformedResource
	}
	start := dataRVA - sectionRVA
	if int(start)+int(size) > len(rsrc) {
		return nil, errMalformedResource
	}
	return rsrc[start : start+size], nil
}

// fixedFileInfo locates the VS_FIXEDFILEINFO block within a version
// resource and decodes the file and product versions from it.
func fixedFileInfo(blob []byte) (*goversion.Version, *goversion.Version, error) {
	sig := make([]byte, 4)
	binary.LittleEndian.PutUint32(sig, fixedFileInfoSignature)

	for off := 0; off+24 <= len(blob); off += 4 {
		if !bytes.Equal(blob[off:off+4], sig) {
			continue
		}
		fileV, err := versionFromWords(
			binary.LittleEndian.Uint32(blob[off+8:]),
			binary.LittleEndian.Uint32(blob[off+12:]),
		)
		if err != nil {
			return nil, nil, err
		}
		prodV, err := versionFromWords(
			binary.LittleEndian.Uint32(blob[off+16:]),
			binary.LittleEndian.Uint32(blob[off+20:]),
		)
		if err != nil {
			return nil, nil, err
		}
		return fileV, prodV, nil
	}
	return nil, nil, fmt.Errorf("no VS_FIXEDFILEINFO block")
}

// stringValue scans the version resource for a string-table entry with
// the given key and returns its value.
func stringValue(blob []byte, key string) (string, bool) {
	needle := encodeUTF16(key + "\x00")
	idx := bytes.Index(blob, needle)
	if idx < 0 {
		return "", false
	}

	// The value starts after the key's terminator, padded to a 32-bit
	// boundary.
	off := idx + len(needle)
	for off%4 != 0 {
		off++
	}

	var units []uint16
	for off+2 <= len(blob) {
		u := binary.LittleEndian.Uint16(blob[off:])
		if u == 0 {
			break
		}
		units = append(units, u)
		off += 2
	}
	if len(units) == 0 {
		return "", false
	}
	return string(utf16.Decode(units)), true
}

func encodeUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}
