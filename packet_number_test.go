package quicker_test

import (
	"errors"
	"testing"

	. "github.com/mohamedrefertj/quicker"
)

var mapPacketNumberTypeToWidth = map[PacketNumberType]int{
	PacketNumberOneOctet:  1,
	PacketNumberTwoOctet:  2,
	PacketNumberFourOctet: 4,
}

func TestPacketNumberTypeWidth(t *testing.T) {
	for pnType, want := range mapPacketNumberTypeToWidth {
		width, err := pnType.Width()
		if err != nil {
			t.Errorf("Width(0x%x) error: %v", byte(pnType), err)
		}
		if width != want {
			t.Errorf("Width(0x%x) = %d, want %d", byte(pnType), width, want)
		}
	}

	if _, err := PacketNumberType(0x3).Width(); !errors.Is(err, ErrInvalidPacketNumberWidth) {
		t.Errorf("Width(0x3) = %v, want ErrInvalidPacketNumberWidth", err)
	}
}

func TestPacketNumberOrdering(t *testing.T) {
	if !PacketNumber(1).Less(2) {
		t.Error("1 should be less than 2")
	}
	if PacketNumber(2).Less(2) {
		t.Error("2 should not be less than itself")
	}
	if d := PacketNumber(3).Delta(10); d != 7 {
		t.Errorf("Delta(3, 10) = %d, want 7", d)
	}
	if d := PacketNumber(10).Delta(3); d != 7 {
		t.Errorf("Delta(10, 3) = %d, want 7", d)
	}
}
