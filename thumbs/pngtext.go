package thumbs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Minimal tEXt chunk handling on top of the stock PNG encoder, which cannot
// emit ancillary chunks itself. Layout per RFC 2083: length, type, data, CRC
// over type+data.

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type textEntry struct {
	Key, Value string
}

func appendChunk(out []byte, chunkType string, data []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	out = append(out, length[:]...)

	start := len(out)
	out = append(out, chunkType...)
	out = append(out, data...)

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(out[start:]))
	return append(out, crc[:]...)
}

// insertTextChunks returns png with a tEXt chunk per entry spliced in before
// the IEND chunk.
func insertTextChunks(png []byte, entries []textEntry) ([]byte, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, fmt.Errorf("not a PNG stream")
	}

	iend := -1
	pos := len(pngSignature)
	for pos+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[pos:]))
		chunkType := string(png[pos+4 : pos+8])
		if chunkType == "IEND" {
			iend = pos
			break
		}
		pos += 8 + length + 4
	}
	if iend < 0 {
		return nil, fmt.Errorf("PNG stream has no IEND chunk")
	}

	out := make([]byte, 0, len(png)+len(entries)*64)
	out = append(out, png[:iend]...)
	for _, e := range entries {
		data := make([]byte, 0, len(e.Key)+1+len(e.Value))
		data = append(data, e.Key...)
		data = append(data, 0)
		data = append(data, e.Value...)
		out = appendChunk(out, "tEXt", data)
	}
	out = append(out, png[iend:]...)

	return out, nil
}

// readTextChunks collects all tEXt key/value pairs from a PNG stream.
func readTextChunks(png []byte) (map[string]string, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return nil, fmt.Errorf("not a PNG stream")
	}

	texts := make(map[string]string)

	pos := len(pngSignature)
	for pos+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[pos:]))
		chunkType := string(png[pos+4 : pos+8])
		if pos+8+length > len(png) {
			return nil, fmt.Errorf("truncated PNG chunk %q", chunkType)
		}

		if chunkType == "tEXt" {
			data := png[pos+8 : pos+8+length]
			if sep := bytes.IndexByte(data, 0); sep >= 0 {
				texts[string(data[:sep])] = string(data[sep+1:])
			}
		}
		if chunkType == "IEND" {
			break
		}

		pos += 8 + length + 4
	}

	return texts, nil
}
