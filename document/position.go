package document

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// OffsetAt converts a protocol Position (line, UTF-16 character offset) to a
// byte offset in the snapshot. Positions past the end clamp to the end.
func OffsetAt(s *textedit.Snapshot, pos protocol.Position) int {
	line := int(pos.Line)
	if line >= s.LineCount() {
		return s.Len()
	}
	return s.LineStart(line) + utf16OffsetToBytes(s.Line(line), int(pos.Character))
}

// PositionAt converts a byte offset to a protocol Position.
func PositionAt(s *textedit.Snapshot, offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > s.Len() {
		offset = s.Len()
	}
	line, col := s.PositionOf(offset)
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(bytesToUTF16Offset(s.Line(line)[:col])),
	}
}

// utf16OffsetToBytes converts a UTF-16 character offset within a line to a
// byte offset, clamping to the line length.
func utf16OffsetToBytes(line string, utf16Offset int) int {
	u16 := 0
	byteOffset := 0
	for byteOffset < len(line) && u16 < utf16Offset {
		r, size := utf8.DecodeRuneInString(line[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			u16++
			byteOffset++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		byteOffset += size
	}
	return byteOffset
}

// bytesToUTF16Offset returns the UTF-16 length of s.
func bytesToUTF16Offset(s string) int {
	u16 := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			u16++
			i++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		i += size
	}
	return u16
}
