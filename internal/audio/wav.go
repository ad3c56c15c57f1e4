package audio

import "encoding/binary"

const (
	wavHeaderSize = 44
	maxWAVDataLen = 1<<32 - 1 - (wavHeaderSize - 8)

	wavFormatPCM = 1
)

// encodeWAVHeader renders the canonical 44-byte RIFF/WAVE header for an
// uncompressed PCM stream of dataLen payload bytes.
func encodeWAVHeader(f Format, dataLen uint32) []byte {
	buf := make([]byte, wavHeaderSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], dataLen+wavHeaderSize-8)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(f.ByteRate()))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(f.BlockAlign()))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(f.BitDepth))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataLen)
	return buf
}
